// Package download streams remote media into the cache directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

// DefaultChunkSize is the read size per progress step.
const DefaultChunkSize = 4 << 20

// Download errors.
var (
	ErrShortDownload         = errors.New("download ended before the declared content length")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrUnexpectedStatus      = errors.New("unexpected status code")
	ErrInsufficientSpace     = errors.New("insufficient free disk space")
)

// Doer executes HTTP requests. *httpclient.Client and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Progress is reported after each chunk is written.
type Progress struct {
	Name       string
	Downloaded int64
	// Total is the declared content length, or -1 when unknown.
	Total int64
}

// ProgressFunc receives download progress.
type ProgressFunc func(Progress)

// Result describes a completed download.
type Result struct {
	Path     string
	Bytes    int64
	Duration time.Duration
}

// FreeSpaceFunc reports the free bytes on the filesystem holding dir.
type FreeSpaceFunc func(ctx context.Context, dir string) (uint64, error)

// Downloader writes remote files into a sandbox.
type Downloader struct {
	doer         Doer
	sandbox      *storage.Sandbox
	chunkSize    int
	minFreeSpace int64
	freeSpace    FreeSpaceFunc
	progress     ProgressFunc
	logger       *slog.Logger
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithChunkSize sets the read size per progress step.
func WithChunkSize(n int64) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.chunkSize = int(n)
		}
	}
}

// WithMinFreeSpace keeps at least n bytes free after the download.
func WithMinFreeSpace(n int64) Option {
	return func(d *Downloader) {
		d.minFreeSpace = n
	}
}

// WithFreeSpaceFunc overrides the free space probe.
func WithFreeSpaceFunc(fn FreeSpaceFunc) Option {
	return func(d *Downloader) {
		d.freeSpace = fn
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Downloader) {
		d.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		d.logger = logger
	}
}

// New creates a Downloader writing into sandbox.
func New(doer Doer, sandbox *storage.Sandbox, opts ...Option) *Downloader {
	d := &Downloader{
		doer:      doer,
		sandbox:   sandbox,
		chunkSize: DefaultChunkSize,
		freeSpace: diskFree,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func diskFree(ctx context.Context, dir string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// Fetch downloads url into the sandbox file name. Data is written to a
// temporary file first and renamed into place only when the full declared
// length arrived; on any failure nothing is left at name.
func (d *Downloader) Fetch(ctx context.Context, url, name string) (*Result, error) {
	start := time.Now()
	target, err := d.sandbox.ResolvePath(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// Content-Length must describe the bytes we write.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := d.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); isText(ct) {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedContentType, ct)
	}

	total := resp.ContentLength
	if err := d.checkSpace(ctx, total); err != nil {
		return nil, err
	}

	d.logger.Info("starting download",
		slog.String("file", name),
		slog.String("size", sizeLabel(total)),
	)

	tmp, err := d.sandbox.CreateTemp(name)
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		if !published {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := d.copyChunks(tmp, resp.Body, name, total)
	if err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", name, err)
	}

	if total > 0 && written < total {
		d.logger.Warn("download incomplete, discarding",
			slog.String("file", name),
			slog.Int64("received", written),
			slog.Int64("expected", total),
		)
		return nil, fmt.Errorf("%w: received %d of %d bytes", ErrShortDownload, written, total)
	}

	if err := d.sandbox.Publish(tmpPath, name); err != nil {
		return nil, err
	}
	published = true

	result := &Result{Path: target, Bytes: written, Duration: time.Since(start)}
	d.logger.Info("download complete",
		slog.String("file", name),
		slog.String("size", humanize.IBytes(uint64(written))),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// copyChunks copies src to dst in chunkSize reads. A body that ends early
// (io.ErrUnexpectedEOF) is not an error here; the caller compares lengths.
func (d *Downloader) copyChunks(dst io.Writer, src io.Reader, name string, total int64) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var written int64

	for {
		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("writing %s: %w", name, err)
			}
			written += int64(n)
			if d.progress != nil {
				d.progress(Progress{Name: name, Downloaded: written, Total: total})
			}
		}

		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			return written, nil
		default:
			return written, fmt.Errorf("reading %s: %w", name, readErr)
		}
	}
}

func (d *Downloader) checkSpace(ctx context.Context, total int64) error {
	if total <= 0 || d.freeSpace == nil {
		return nil
	}

	free, err := d.freeSpace(ctx, d.sandbox.BaseDir())
	if err != nil {
		d.logger.Warn("could not determine free disk space", slog.String("error", err.Error()))
		return nil
	}

	need := uint64(total)
	if d.minFreeSpace > 0 {
		need += uint64(d.minFreeSpace)
	}
	if free < need {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientSpace,
			humanize.IBytes(need), humanize.IBytes(free))
	}
	return nil
}

func isText(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	return strings.HasPrefix(strings.ToLower(mediaType), "text/")
}

func sizeLabel(total int64) string {
	if total < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(total))
}
