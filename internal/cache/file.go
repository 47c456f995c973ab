package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

// FileStore keeps snapshots as files named "<provider slug>-<key>" inside a sandbox.
type FileStore struct {
	sandbox   *storage.Sandbox
	provider  string
	threshold time.Duration
	logger    *slog.Logger
	locks     keyedMutex
	now       func() time.Time
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileLogger sets the logger.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a file-backed store. A threshold of zero or less
// disables expiry.
func NewFileStore(sandbox *storage.Sandbox, provider string, threshold time.Duration, opts ...FileOption) *FileStore {
	s := &FileStore{
		sandbox:   sandbox,
		provider:  provider,
		threshold: threshold,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the absolute path backing key.
func (s *FileStore) Path(key string) (string, error) {
	return s.sandbox.ResolvePath(storage.ScopedName(s.provider, key))
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, key string) (json.RawMessage, bool) {
	name := storage.ScopedName(s.provider, key)
	unlock := s.locks.lock(name)
	defer unlock()

	info, err := s.sandbox.Stat(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache stat failed", slog.String("file", name), slog.String("error", err.Error()))
		}
		return nil, false
	}

	if s.threshold > 0 {
		if age := s.now().Sub(info.ModTime()); age > s.threshold {
			s.logger.Debug("cache file is stale",
				slog.String("file", name),
				slog.Duration("age", age),
				slog.Duration("threshold", s.threshold),
			)
			return nil, false
		}
	}

	data, err := s.sandbox.ReadFile(name)
	if err != nil {
		s.logger.Warn("cache read failed", slog.String("file", name), slog.String("error", err.Error()))
		return nil, false
	}

	if !usable(data) {
		s.logger.Debug("cache file is empty or unparsable", slog.String("file", name))
		return nil, false
	}

	return json.RawMessage(data), true
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, key string, data json.RawMessage) bool {
	name := storage.ScopedName(s.provider, key)

	if !json.Valid(data) {
		s.logger.Warn("refusing to cache invalid JSON", slog.String("file", name))
		return false
	}

	unlock := s.locks.lock(name)
	defer unlock()

	if err := s.sandbox.AtomicWrite(name, data); err != nil {
		s.logger.Warn("cache write failed", slog.String("file", name), slog.String("error", err.Error()))
		return false
	}
	return true
}
