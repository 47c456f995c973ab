// Package metrics records catalog loads and downloads as Prometheus metrics.
// A CLI run is short-lived, so metrics are written in the text exposition
// format to a file for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/download"
)

const namespace = "xtreamr"

// Collector owns a registry with the xtreamr metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	cacheLookups     *prometheus.CounterVec
	streamsLoaded    *prometheus.CounterVec
	streamsSkipped   *prometheus.CounterVec
	groupsLoaded     *prometheus.CounterVec
	loadFailures     *prometheus.CounterVec
	loadDuration     prometheus.Histogram
	lastLoad         prometheus.Gauge
	downloads        *prometheus.CounterVec
	downloadedBytes  prometheus.Counter
	downloadDuration prometheus.Histogram
}

// New creates a Collector with a private registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups during catalog loads by kind and result",
		}, []string{"provider", "kind", "result"}),
		streamsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_loaded_total",
			Help:      "Streams added to the catalog by class",
		}, []string{"provider", "class"}),
		streamsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_skipped_total",
			Help:      "Stream records not added to the catalog by class and reason",
		}, []string{"provider", "class", "reason"}),
		groupsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_loaded_total",
			Help:      "Groups added to the catalog by class",
		}, []string{"provider", "class"}),
		loadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Classes whose groups or streams could not be obtained",
		}, []string{"provider", "class", "stage"}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of catalog loads",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		lastLoad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_load_timestamp_seconds",
			Help:      "Unix time of the last completed catalog load",
		}),
		downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Video downloads by result",
		}, []string{"result"}),
		downloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written by video downloads",
		}),
		downloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Duration of completed video downloads",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// Registry returns the registry holding the metrics.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveLoad records a catalog load report.
func (c *Collector) ObserveLoad(report *catalog.LoadReport) {
	if c == nil || report == nil {
		return
	}

	provider := report.Provider
	for _, cr := range report.Classes {
		class := string(cr.Class)

		c.cacheLookups.WithLabelValues(provider, "groups", lookupResult(cr.GroupsFromCache)).Inc()
		if cr.GroupsFailed {
			c.loadFailures.WithLabelValues(provider, class, "groups").Inc()
			continue
		}
		c.groupsLoaded.WithLabelValues(provider, class).Add(float64(cr.Groups))

		c.cacheLookups.WithLabelValues(provider, "streams", lookupResult(cr.StreamsFromCache)).Inc()
		if cr.StreamsFailed {
			c.loadFailures.WithLabelValues(provider, class, "streams").Inc()
			continue
		}
		c.streamsLoaded.WithLabelValues(provider, class).Add(float64(cr.Streams))
		c.streamsSkipped.WithLabelValues(provider, class, "no_name").Add(float64(cr.SkippedNoName))
		c.streamsSkipped.WithLabelValues(provider, class, "adult").Add(float64(cr.SkippedAdult))
		c.streamsSkipped.WithLabelValues(provider, class, "rejected").Add(float64(cr.Rejected))
	}

	c.loadDuration.Observe(report.Duration.Seconds())
	c.lastLoad.Set(float64(report.Started.Add(report.Duration).Unix()))
}

func lookupResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// ObserveDownload records a video download. A nil result with a nil error
// means the file was already present.
func (c *Collector) ObserveDownload(result *download.Result, err error) {
	if c == nil {
		return
	}

	switch {
	case err != nil:
		c.downloads.WithLabelValues("failed").Inc()
	case result == nil:
		c.downloads.WithLabelValues("cached").Inc()
	default:
		c.downloads.WithLabelValues("completed").Inc()
		c.downloadedBytes.Add(float64(result.Bytes))
		c.downloadDuration.Observe(result.Duration.Seconds())
	}
}

// WriteToTextfile writes every metric to path atomically. An empty path is a no-op.
func (c *Collector) WriteToTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

