package xmltv

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func compress(t *testing.T, c Compression, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewCompressWriter(&buf, c)
	if err != nil {
		t.Fatalf("creating %s writer: %v", c, err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("writing %s: %v", c, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing %s writer: %v", c, err)
	}
	return buf.Bytes()
}

func TestNewReader_DetectsCompression(t *testing.T) {
	for _, c := range []Compression{None, Gzip, Bzip2, XZ} {
		t.Run(c.String(), func(t *testing.T) {
			payload := compress(t, c, sampleGuide)
			if got := Detect(payload); got != c {
				t.Fatalf("expected %s, got %s", c, got)
			}

			rc, detected, err := NewReader(bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer rc.Close()

			if detected != c {
				t.Errorf("expected %s, got %s", c, detected)
			}
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("reading: %v", err)
			}
			if string(got) != sampleGuide {
				t.Error("decompressed content differs")
			}
		})
	}
}

func TestParser_CompressedGuide(t *testing.T) {
	for _, c := range []Compression{Gzip, Bzip2, XZ} {
		t.Run(c.String(), func(t *testing.T) {
			channels, programmes, err := ParseAll(context.Background(), bytes.NewReader(compress(t, c, sampleGuide)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(channels) != 2 || len(programmes) != 2 {
				t.Errorf("expected 2 channels and 2 programmes, got %d and %d", len(channels), len(programmes))
			}
		})
	}
}

func TestNewReader_ShortInput(t *testing.T) {
	rc, c, err := NewReader(strings.NewReader("<tv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	if c != None {
		t.Errorf("expected none, got %s", c)
	}
}

func TestCompression_Extension(t *testing.T) {
	for _, c := range []Compression{Gzip, Bzip2, XZ} {
		if got := CompressionFromPath("guide.xml" + c.Extension()); got != c {
			t.Errorf("%s: round trip through extension gave %s", c, got)
		}
	}
	if None.Extension() != "" {
		t.Errorf("expected no extension for uncompressed output")
	}
}

func TestCompressionFromPath(t *testing.T) {
	tests := map[string]Compression{
		"guide.xml":      None,
		"guide.xml.gz":   Gzip,
		"guide.XML.BZ2":  Bzip2,
		"/tmp/guide.xz":  XZ,
		"guide.xml.gzip": Gzip,
	}
	for path, want := range tests {
		if got := CompressionFromPath(path); got != want {
			t.Errorf("%s: expected %s, got %s", path, want, got)
		}
	}
}
