// Package catalog holds an authenticated view of one Xtream provider: its
// groups, channels, movies and series, loaded from the local cache or the
// provider and kept in memory for the lifetime of a Session.
package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jmylchreest/xtreamr/internal/cache"
	"github.com/jmylchreest/xtreamr/internal/download"
	"github.com/jmylchreest/xtreamr/internal/observability"
	"github.com/jmylchreest/xtreamr/internal/storage"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// Authentication defaults.
const (
	DefaultAuthAttempts = 30
	DefaultAuthInterval = time.Second
	DefaultAuthTimeout  = 4 * time.Second
)

// Provider identifies the account a Session works against.
type Provider struct {
	Name      string
	URL       string
	Username  string
	Password  string
	HideAdult bool
}

// Session is an authenticated, load-once catalog of one provider.
// It is safe for concurrent use.
type Session struct {
	provider  Provider
	sandbox   *storage.Sandbox
	transport xtream.Transport
	client    *xtream.Client
	store     cache.Store
	audit     *cache.AuditLog
	logger    *slog.Logger

	threshold    time.Duration
	requestRate  float64
	authAttempts int
	authInterval time.Duration
	authTimeout  time.Duration

	downloader  *download.Downloader
	downloadOps []download.Option

	mu            sync.Mutex
	authenticated bool
	loaded        bool
	auth          *xtream.AuthInfo
	streamCreds   xtream.Credentials
	secureServer  string

	groups   []*Group
	index    map[groupKey]*Group
	catchAll *Group
	channels []*Channel
	movies   []*Channel
	series   []*Serie
}

type groupKey struct {
	class xtream.StreamClass
	id    string
}

// Option configures a Session.
type Option func(*Session)

// WithStore replaces the default file store.
func WithStore(store cache.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithReloadThreshold sets the snapshot age after which the default file store
// misses. Zero or less disables expiry.
func WithReloadThreshold(d time.Duration) Option {
	return func(s *Session) {
		s.threshold = d
	}
}

// WithAuditLog replaces the default skipped-record log.
func WithAuditLog(audit *cache.AuditLog) Option {
	return func(s *Session) {
		s.audit = audit
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRateLimit caps provider API requests per second.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(s *Session) {
		s.requestRate = requestsPerSecond
	}
}

// WithAuthRetry overrides the login attempt count, the pacing between
// attempts and the per-attempt timeout.
func WithAuthRetry(attempts int, interval, timeout time.Duration) Option {
	return func(s *Session) {
		if attempts > 0 {
			s.authAttempts = attempts
		}
		if interval >= 0 {
			s.authInterval = interval
		}
		if timeout > 0 {
			s.authTimeout = timeout
		}
	}
}

// WithDownloader replaces the video downloader.
func WithDownloader(d *download.Downloader) Option {
	return func(s *Session) {
		s.downloader = d
	}
}

// WithDownloadOptions configures the default video downloader.
func WithDownloadOptions(opts ...download.Option) Option {
	return func(s *Session) {
		s.downloadOps = append(s.downloadOps, opts...)
	}
}

// NewSession creates an unauthenticated session. The sandbox is the cache
// directory: snapshots, the audit log, logo paths and downloads live in it.
func NewSession(provider Provider, transport xtream.Transport, sandbox *storage.Sandbox, opts ...Option) *Session {
	s := &Session{
		provider:     provider,
		sandbox:      sandbox,
		transport:    transport,
		logger:       slog.Default(),
		authAttempts: DefaultAuthAttempts,
		authInterval: DefaultAuthInterval,
		authTimeout:  DefaultAuthTimeout,
		index:        make(map[groupKey]*Group),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = observability.WithComponent(s.logger, "catalog").With(slog.String("provider", provider.Name))

	s.client = xtream.NewClient(provider.URL, xtream.Credentials{
		Username: provider.Username,
		Password: provider.Password,
	}, transport, xtream.WithRateLimit(s.requestRate), xtream.WithLogger(s.logger))

	if s.store == nil {
		s.store = cache.NewFileStore(sandbox, provider.Name, s.threshold, cache.WithFileLogger(s.logger))
	}
	if s.audit == nil {
		s.audit = cache.NewAuditLog(sandbox, s.logger)
	}
	if s.downloader == nil {
		var doer download.Doer = http.DefaultClient
		if d, ok := transport.(download.Doer); ok {
			doer = d
		}
		ops := append([]download.Option{download.WithLogger(s.logger)}, s.downloadOps...)
		s.downloader = download.New(doer, sandbox, ops...)
	}
	return s
}

// Provider returns the provider the session was created for.
func (s *Session) Provider() Provider {
	return s.provider
}

// Server returns the provider base URL.
func (s *Session) Server() string {
	return s.client.Server()
}

// CacheDir returns the absolute cache directory.
func (s *Session) CacheDir() string {
	return s.sandbox.BaseDir()
}

// Authenticated reports whether a login succeeded.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Loaded reports whether Load has completed.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// AuthInfo returns the login response, nil before authentication.
func (s *Session) AuthInfo() *xtream.AuthInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// SecureServer returns the HTTPS base URL advertised at login, or "".
func (s *Session) SecureServer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secureServer
}

// Groups returns the loaded groups sorted by name.
func (s *Session) Groups() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Group(nil), s.groups...)
}

// Channels returns the Live class streams in load order.
func (s *Session) Channels() []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Channel(nil), s.channels...)
}

// Movies returns the VOD class streams in load order.
func (s *Session) Movies() []*Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Channel(nil), s.movies...)
}

// Series returns the series in load order.
func (s *Session) Series() []*Serie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Serie(nil), s.series...)
}

// CatchAll returns the session's orphan group, nil before the first groups
// were loaded.
func (s *Session) CatchAll() *Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catchAll
}

// Group returns the group with id within class. The catch-all id resolves
// regardless of class.
func (s *Session) Group(class xtream.StreamClass, id string) *Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupGroup(class, id)
}

// GroupTitle returns the name of the group with id within class, or "".
func (s *Session) GroupTitle(class xtream.StreamClass, id string) string {
	if g := s.Group(class, id); g != nil {
		return g.Name
	}
	return ""
}

func (s *Session) lookupGroup(class xtream.StreamClass, id string) *Group {
	if g, ok := s.index[groupKey{class, id}]; ok {
		return g
	}
	if s.catchAll != nil && id == CatchAllGroupID {
		return s.catchAll
	}
	return nil
}

// Movie returns the movie with id, or nil.
func (s *Session) Movie(id string) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findChannel(s.movies, id)
}

// Channel returns the live stream with id, or nil.
func (s *Session) Channel(id string) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findChannel(s.channels, id)
}

// Serie returns the series with id, or nil.
func (s *Session) Serie(id string) *Serie {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, serie := range s.series {
		if serie.ID == id {
			return serie
		}
	}
	return nil
}

func findChannel(list []*Channel, id string) *Channel {
	for _, c := range list {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Authenticate logs in unless the session is already authenticated. Attempts
// are paced by authInterval and bounded by authTimeout each.
func (s *Session) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authenticated {
		return nil
	}

	info, err := s.login(ctx)
	if err != nil {
		return err
	}

	s.auth = info
	s.streamCreds = xtream.Credentials{
		Username: firstNonEmpty(info.UserInfo.Username.String(), s.provider.Username),
		Password: firstNonEmpty(info.UserInfo.Password.String(), s.provider.Password),
	}
	s.secureServer = info.ServerInfo.SecureServer()
	s.authenticated = true

	s.logger.Info("authenticated",
		slog.String("status", info.UserInfo.Status),
		slog.Bool("active", info.UserInfo.IsActive()),
		slog.String("secure_server", s.secureServer),
	)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

