package xmltv

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

// Compression identifies the container format of a guide file.
type Compression int

// Supported compression formats.
const (
	None Compression = iota
	Gzip
	Bzip2
	XZ
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

// Extension returns the conventional file suffix, including the dot.
func (c Compression) Extension() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// CompressionFromPath picks a compression from a file name suffix.
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return Gzip
	case ".bz2", ".bzip2":
		return Bzip2
	case ".xz":
		return XZ
	default:
		return None
	}
}

// Detect identifies the compression of a stream from its leading bytes.
func Detect(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip
	case bytes.HasPrefix(header, bzip2Magic):
		return Bzip2
	case bytes.HasPrefix(header, xzMagic):
		return XZ
	default:
		return None
	}
}

// NewReader returns a reader that yields the decompressed content of r,
// sniffing the format from the first bytes. Closing it does not close r.
func NewReader(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, None, fmt.Errorf("peeking header: %w", err)
	}

	c := Detect(header)
	switch c {
	case Gzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gzr, c, nil
	case Bzip2:
		bzr, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, c, fmt.Errorf("creating bzip2 reader: %w", err)
		}
		return bzr, c, nil
	case XZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, c, fmt.Errorf("creating xz reader: %w", err)
		}
		return io.NopCloser(xzr), c, nil
	default:
		return io.NopCloser(br), c, nil
	}
}

// NewCompressWriter wraps w so that written bytes are compressed with c.
// The returned writer must be closed to flush the trailer; closing it does
// not close w.
func NewCompressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Bzip2:
		bzw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 writer: %w", err)
		}
		return bzw, nil
	case XZ:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating xz writer: %w", err)
		}
		return xzw, nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
