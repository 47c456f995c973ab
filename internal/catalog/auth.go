package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/xtreamr/pkg/httpclient"
	"github.com/jmylchreest/xtreamr/pkg/xtream"
)

// login tries up to authAttempts times. Every failed attempt is retried: the
// transport reports timeouts, refused connections and bad payloads alike as
// a nil response. Attempts bypass the transport's circuit breaker so each one
// reaches the provider.
func (s *Session) login(ctx context.Context) (*xtream.AuthInfo, error) {
	limit := rate.Inf
	if s.authInterval > 0 {
		limit = rate.Every(s.authInterval)
	}
	pacer := rate.NewLimiter(limit, 1)

	for attempt := 1; attempt <= s.authAttempts; attempt++ {
		if err := pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}

		attemptCtx, cancel := context.WithTimeout(httpclient.WithoutCircuitBreaker(ctx), s.authTimeout)
		info := s.client.Authenticate(attemptCtx)
		cancel()

		if info != nil {
			return info, nil
		}

		s.logger.Warn("login attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.authAttempts),
		)
	}

	s.logger.Error("authentication failed", slog.Int("attempts", s.authAttempts))
	return nil, fmt.Errorf("%w after %d attempts", ErrAuthenticationFailed, s.authAttempts)
}
