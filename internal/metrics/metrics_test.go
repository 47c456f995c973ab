package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/download"
)

func testReport() *catalog.LoadReport {
	return &catalog.LoadReport{
		RunID:    "01J0000000000000000000000",
		Provider: "acme",
		Started:  time.Unix(1700000000, 0),
		Duration: 2 * time.Second,
		Classes: []catalog.ClassReport{
			{Class: "Live", Groups: 2, Streams: 10, SkippedNoName: 1, SkippedAdult: 3, Rejected: 1, GroupsFromCache: true, StreamsFromCache: true},
			{Class: "VOD", Groups: 1, Streams: 5, StreamsFailed: true},
			{Class: "Series", GroupsFailed: true},
		},
	}
}

func TestObserveLoad(t *testing.T) {
	c := New()
	c.ObserveLoad(testReport())

	assert.Equal(t, 10.0, testutil.ToFloat64(c.streamsLoaded.WithLabelValues("acme", "Live")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.streamsSkipped.WithLabelValues("acme", "Live", "adult")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.streamsSkipped.WithLabelValues("acme", "Live", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("acme", "groups", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("acme", "groups", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.loadFailures.WithLabelValues("acme", "VOD", "streams")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.loadFailures.WithLabelValues("acme", "Series", "groups")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.streamsLoaded.WithLabelValues("acme", "VOD")), "failed streams are not counted")
	assert.Equal(t, 1700000002.0, testutil.ToFloat64(c.lastLoad))
}

func TestObserveDownload(t *testing.T) {
	c := New()
	c.ObserveDownload(&download.Result{Bytes: 2048, Duration: time.Second}, nil)
	c.ObserveDownload(nil, nil)
	c.ObserveDownload(nil, errors.New("short"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.downloads.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.downloads.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.downloads.WithLabelValues("failed")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(c.downloadedBytes))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveLoad(testReport())
		c.ObserveDownload(nil, nil)
	})
	assert.NoError(t, c.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, c.Registry())
}

func TestWriteToTextfile(t *testing.T) {
	c := New()
	c.ObserveLoad(testReport())

	path := filepath.Join(t.TempDir(), "xtreamr.prom")
	require.NoError(t, c.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	output := string(data)
	assert.Contains(t, output, `xtreamr_streams_loaded_total{class="Live",provider="acme"} 10`)
	assert.Contains(t, output, "xtreamr_load_duration_seconds_bucket")
	assert.Contains(t, output, "# HELP xtreamr_cache_lookups_total")

	assert.NoError(t, c.WriteToTextfile(""))
}
