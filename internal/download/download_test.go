package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

func newTestDownloader(t *testing.T, opts ...Option) (*Downloader, *storage.Sandbox) {
	t.Helper()
	sb, err := storage.NewSandbox(t.TempDir())
	require.NoError(t, err)

	opts = append([]Option{WithFreeSpaceFunc(func(context.Context, string) (uint64, error) {
		return 1 << 40, nil
	})}, opts...)
	return New(http.DefaultClient, sb, opts...), sb
}

func serveBytes(payload []byte, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temporary files may remain")
}

func TestFetch_Success(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 10*1024+7)
	server := httptest.NewServer(serveBytes(payload, "video/x-matroska"))
	defer server.Close()

	var updates []Progress
	d, sb := newTestDownloader(t,
		WithChunkSize(4096),
		WithProgress(func(p Progress) { updates = append(updates, p) }),
	)

	res, err := d.Fetch(context.Background(), server.URL+"/movie/u/p/1.mkv", "movie.mkv")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(sb.BaseDir(), "movie.mkv"), res.Path)
	assert.Equal(t, int64(len(payload)), res.Bytes)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	require.Len(t, updates, 3)
	assert.Equal(t, int64(4096), updates[0].Downloaded)
	assert.Equal(t, int64(len(payload)), updates[2].Downloaded)
	assert.Equal(t, int64(len(payload)), updates[2].Total)

	entries, err := os.ReadDir(sb.BaseDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetch_SendsIdentityEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "identity", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	d, _ := newTestDownloader(t)
	_, err := d.Fetch(context.Background(), server.URL, "a.mp4")
	require.NoError(t, err)
}

func TestFetch_RejectsText(t *testing.T) {
	for _, ct := range []string{"text/html; charset=utf-8", "text/plain", "TEXT/HTML"} {
		t.Run(ct, func(t *testing.T) {
			server := httptest.NewServer(serveBytes([]byte("<html>blocked</html>"), ct))
			defer server.Close()

			d, sb := newTestDownloader(t)
			_, err := d.Fetch(context.Background(), server.URL, "movie.mp4")
			assert.ErrorIs(t, err, ErrUnexpectedContentType)
			assertNoFiles(t, sb.BaseDir())
		})
	}
}

func TestFetch_RejectsNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	d, sb := newTestDownloader(t)
	_, err := d.Fetch(context.Background(), server.URL, "movie.mp4")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assertNoFiles(t, sb.BaseDir())
}

func TestFetch_ShortDownloadLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write(bytes.Repeat([]byte("y"), 400))
	}))
	defer server.Close()

	d, sb := newTestDownloader(t, WithChunkSize(128))
	_, err := d.Fetch(context.Background(), server.URL, "movie.mp4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortDownload), "got %v", err)
	assertNoFiles(t, sb.BaseDir())
}

func TestFetch_InsufficientSpace(t *testing.T) {
	server := httptest.NewServer(serveBytes(bytes.Repeat([]byte("z"), 2048), "video/mp4"))
	defer server.Close()

	d, sb := newTestDownloader(t,
		WithMinFreeSpace(1024),
		WithFreeSpaceFunc(func(context.Context, string) (uint64, error) { return 2048, nil }),
	)
	_, err := d.Fetch(context.Background(), server.URL, "movie.mp4")
	assert.ErrorIs(t, err, ErrInsufficientSpace)
	assertNoFiles(t, sb.BaseDir())
}

func TestFetch_FreeSpaceProbeFailureIsIgnored(t *testing.T) {
	server := httptest.NewServer(serveBytes([]byte("abc"), "video/mp4"))
	defer server.Close()

	d, _ := newTestDownloader(t,
		WithFreeSpaceFunc(func(context.Context, string) (uint64, error) { return 0, errors.New("no statfs") }),
	)
	res, err := d.Fetch(context.Background(), server.URL, "movie.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Bytes)
}

func TestFetch_EscapingNameRejected(t *testing.T) {
	d, _ := newTestDownloader(t)
	_, err := d.Fetch(context.Background(), "http://127.0.0.1:1/x", "../evil.mp4")
	assert.ErrorIs(t, err, storage.ErrEscapesSandbox)
}

func TestIsText(t *testing.T) {
	assert.True(t, isText("text/html"))
	assert.True(t, isText("text/plain; charset=utf-8"))
	assert.False(t, isText("video/mp2t"))
	assert.False(t, isText("application/octet-stream"))
	assert.False(t, isText(""))
}

func TestDiskFree(t *testing.T) {
	free, err := diskFree(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, free)
}
