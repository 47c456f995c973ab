package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/xtreamr/internal/cache"
	"github.com/jmylchreest/xtreamr/internal/catalog"
)

// SessionFactory creates a fresh session with the given extra options.
type SessionFactory func(opts ...catalog.Option) *catalog.Session

// CacheWarmer reloads the provider catalog into the cache. Each run uses a
// new session whose store always misses on read, so every snapshot is
// fetched again and written through.
type CacheWarmer struct {
	store      cache.Store
	newSession SessionFactory
	observe    func(*catalog.LoadReport)
	logger     *slog.Logger
}

// NewCacheWarmer creates a warmer writing to store. observe may be nil.
func NewCacheWarmer(store cache.Store, newSession SessionFactory, observe func(*catalog.LoadReport), logger *slog.Logger) *CacheWarmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheWarmer{store: store, newSession: newSession, observe: observe, logger: logger}
}

// Run performs one refresh. A partial load is reported as an error after the
// snapshots that could be fetched have been written.
func (w *CacheWarmer) Run(ctx context.Context) error {
	session := w.newSession(catalog.WithStore(cache.Refreshing(w.store)))

	if err := session.Authenticate(ctx); err != nil {
		return fmt.Errorf("warming cache: %w", err)
	}

	report, err := session.Load(ctx)
	if err != nil {
		return fmt.Errorf("warming cache: %w", err)
	}
	if w.observe != nil {
		w.observe(report)
	}

	w.logger.Info("cache warmed",
		slog.String("run_id", report.RunID),
		slog.Int("streams", report.TotalStreams()),
		slog.Duration("duration", report.Duration),
	)
	if report.Partial() {
		return fmt.Errorf("warming cache: provider returned a partial catalog (run %s)", report.RunID)
	}
	return nil
}
