package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jmylchreest/xtreamr/internal/cache"
	"github.com/jmylchreest/xtreamr/internal/catalog"
	"github.com/jmylchreest/xtreamr/internal/config"
	"github.com/jmylchreest/xtreamr/internal/download"
	"github.com/jmylchreest/xtreamr/internal/metrics"
	"github.com/jmylchreest/xtreamr/internal/observability"
	"github.com/jmylchreest/xtreamr/internal/storage"
	"github.com/jmylchreest/xtreamr/internal/version"
	"github.com/jmylchreest/xtreamr/pkg/httpclient"
)

// printer formats counts with thousands separators.
var printer = message.NewPrinter(language.English)

// app holds the dependencies shared by the provider commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	sandbox   *storage.Sandbox
	transport *httpclient.Client
	store     cache.Store
	metrics   *metrics.Collector
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	if err := cfg.Provider.Validate(); err != nil {
		return nil, err
	}

	dir, err := storage.ResolveCacheDir(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	sandbox, err := storage.NewSandbox(dir)
	if err != nil {
		return nil, fmt.Errorf("opening cache directory: %w", err)
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.ConnectTimeout = cfg.HTTP.ConnectTimeout
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.RetryAttempts = cfg.HTTP.RetryAttempts
	httpCfg.RetryDelay = cfg.HTTP.RetryDelay
	httpCfg.UserAgent = cfg.HTTP.UserAgent
	if httpCfg.UserAgent == "" {
		httpCfg.UserAgent = version.UserAgent()
	}
	httpCfg.Logger = observability.WithComponent(log, "httpclient")

	a := &app{
		cfg:       cfg,
		logger:    log,
		sandbox:   sandbox,
		transport: httpclient.New(httpCfg),
		metrics:   metrics.New(),
	}

	if a.store, err = a.openStore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.Cache.Backend != "redis" {
		return cache.NewFileStore(a.sandbox, a.cfg.Provider.Name, a.cfg.Cache.ReloadThreshold,
			cache.WithFileLogger(observability.WithComponent(a.logger, "cache"))), nil
	}

	rs, err := cache.NewRedisStore(a.cfg.Cache.RedisURL, a.cfg.Provider.Name, a.cfg.Cache.ReloadThreshold,
		observability.WithComponent(a.logger, "cache"))
	if err != nil {
		return nil, err
	}
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	a.closers = append(a.closers, rs.Close)
	return rs, nil
}

// newSession creates an unauthenticated session. Later options override
// earlier ones.
func (a *app) newSession(opts ...catalog.Option) *catalog.Session {
	p := a.cfg.Provider
	base := []catalog.Option{
		catalog.WithStore(a.store),
		catalog.WithLogger(a.logger),
		catalog.WithRateLimit(a.cfg.HTTP.RequestsPerSecond),
		catalog.WithDownloadOptions(
			download.WithChunkSize(a.cfg.Download.ChunkSize.Bytes()),
			download.WithMinFreeSpace(a.cfg.Download.MinFreeSpace.Bytes()),
		),
	}
	return catalog.NewSession(catalog.Provider{
		Name:      p.Name,
		URL:       p.URL,
		Username:  p.Username,
		Password:  p.Password,
		HideAdult: p.HideAdult,
	}, a.transport, a.sandbox, append(base, opts...)...)
}

// authenticated returns an authenticated session.
func (a *app) authenticated(ctx context.Context, opts ...catalog.Option) (*catalog.Session, error) {
	s := a.newSession(opts...)
	if err := s.Authenticate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// loaded returns an authenticated session with its catalog loaded.
func (a *app) loaded(ctx context.Context, opts ...catalog.Option) (*catalog.Session, *catalog.LoadReport, error) {
	s, err := a.authenticated(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	report, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.metrics.ObserveLoad(report)
	return s, report, nil
}

// Close writes the metrics textfile and releases connections.
func (a *app) Close() error {
	errs := []error{a.metrics.WriteToTextfile(a.cfg.Metrics.Textfile)}
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// withApp runs fn with an app built from the loaded configuration.
func withApp(ctx context.Context, fn func(a *app) error) (err error) {
	a, err := newApp(ctx, appConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("cleanup failed", slog.String("error", closeErr.Error()))
		}
	}()
	return fn(a)
}
