// Package httpclient provides the HTTP transport used to talk to Xtream providers.
//
// The client wraps the standard http.Client and adds:
//   - separate connect and read timeouts
//   - retries with exponential backoff for transient failures
//   - a circuit breaker so a dead provider fails fast
//   - transparent decompression (gzip, deflate, brotli)
//   - GetJSON, which downgrades every failure to a nil payload
package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Common errors returned by the client.
var (
	ErrCircuitOpen      = errors.New("circuit breaker is open")
	ErrMaxRetries       = errors.New("max retries exceeded")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrReadTimeout      = errors.New("response body read timed out")
)

// Default configuration values.
const (
	DefaultConnectTimeout       = 2 * time.Second
	DefaultReadTimeout          = 15 * time.Second
	DefaultRetryAttempts        = 2
	DefaultRetryDelay           = 1 * time.Second
	DefaultRetryMaxDelay        = 10 * time.Second
	DefaultBackoffMultiplier    = 2.0
	DefaultCircuitThreshold     = 5
	DefaultCircuitTimeout       = 30 * time.Second
	DefaultAcceptEncodingHeader = "gzip, deflate, br"
	DefaultUserAgentHeader      = "Wget/1.20.3 (linux-gnu)"
)

// HTTP header constants.
const (
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentEncoding = "Content-Encoding"
	HeaderUserAgent       = "User-Agent"

	EncodingGzip     = "gzip"
	EncodingDeflate  = "deflate"
	EncodingBrotli   = "br"
	EncodingIdentity = "identity"
)

// Config holds the configuration for the HTTP client.
type Config struct {
	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the wait for response headers once a request is sent.
	// GetJSON also applies it between body reads. Bodies returned by Do are
	// not bounded, so large downloads can stream.
	ReadTimeout time.Duration

	// RetryAttempts is the number of retries after the first attempt.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// RetryMaxDelay caps the exponential backoff.
	RetryMaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// CircuitThreshold is the number of consecutive failures before the circuit opens.
	CircuitThreshold int

	// CircuitTimeout is how long the circuit stays open before a probe is allowed.
	CircuitTimeout time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Logger is the structured logger for request/response logging.
	Logger *slog.Logger

	// EnableDecompression sets Accept-Encoding and decodes compressed bodies.
	EnableDecompression bool

	// BaseClient overrides the underlying http.Client. Timeouts are then the
	// caller's responsibility.
	BaseClient *http.Client
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:      DefaultConnectTimeout,
		ReadTimeout:         DefaultReadTimeout,
		RetryAttempts:       DefaultRetryAttempts,
		RetryDelay:          DefaultRetryDelay,
		RetryMaxDelay:       DefaultRetryMaxDelay,
		BackoffMultiplier:   DefaultBackoffMultiplier,
		CircuitThreshold:    DefaultCircuitThreshold,
		CircuitTimeout:      DefaultCircuitTimeout,
		UserAgent:           DefaultUserAgentHeader,
		Logger:              slog.Default(),
		EnableDecompression: true,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry support.
type Client struct {
	config  Config
	client  *http.Client
	breaker *CircuitBreaker
	logger  *slog.Logger
}

// New creates a new client with the given configuration.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}

	baseClient := cfg.BaseClient
	if baseClient == nil {
		baseClient = &http.Client{Transport: newTransport(cfg)}
	}

	return &Client{
		config:  cfg,
		client:  baseClient,
		breaker: NewCircuitBreaker(cfg.CircuitThreshold, cfg.CircuitTimeout),
		logger:  cfg.Logger,
	}
}

// NewWithDefaults creates a new client with default configuration.
func NewWithDefaults() *Client {
	return New(DefaultConfig())
}

func newTransport(cfg Config) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = cfg.ConnectTimeout
	transport.ResponseHeaderTimeout = cfg.ReadTimeout
	// We negotiate encodings ourselves so brotli and deflate work too.
	transport.DisableCompression = true
	return transport
}

type bypassBreakerKey struct{}

// WithoutCircuitBreaker marks ctx so requests made with it neither consult nor
// update the circuit breaker. Login retries use it to reach the provider on
// every attempt.
func WithoutCircuitBreaker(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassBreakerKey{}, true)
}

func bypassesBreaker(ctx context.Context) bool {
	bypass, _ := ctx.Value(bypassBreakerKey{}).(bool)
	return bypass
}

// Do executes an HTTP request with circuit breaker protection and automatic retries.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	guarded := !bypassesBreaker(ctx)

	if req.Header.Get(HeaderUserAgent) == "" && c.config.UserAgent != "" {
		req.Header.Set(HeaderUserAgent, c.config.UserAgent)
	}
	if c.config.EnableDecompression && req.Header.Get(HeaderAcceptEncoding) == "" {
		req.Header.Set(HeaderAcceptEncoding, DefaultAcceptEncodingHeader)
	}

	var lastErr error
	delay := c.config.RetryDelay

	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("url", req.URL.String()),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * c.config.BackoffMultiplier)
			if c.config.RetryMaxDelay > 0 && delay > c.config.RetryMaxDelay {
				delay = c.config.RetryMaxDelay
			}
		}

		if guarded && !c.breaker.Allow() {
			c.logger.Warn("circuit breaker open, skipping request",
				slog.String("url", req.URL.String()),
			)
			return nil, ErrCircuitOpen
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.recordFailure(guarded)
			lastErr = err
			c.logger.Warn("request failed",
				slog.String("url", req.URL.String()),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()),
				slog.Int("attempt", attempt),
			)

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			continue
		}

		if isRetryableStatus(resp.StatusCode) {
			c.recordFailure(guarded)
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
			c.logger.Warn("retryable status code",
				slog.String("url", req.URL.String()),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt),
			)
			_ = resp.Body.Close()
			continue
		}

		switch {
		case !guarded:
		case resp.StatusCode >= 500:
			c.breaker.RecordFailure()
		default:
			c.breaker.RecordSuccess()
		}

		c.logger.Debug("request completed",
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration),
			slog.Int64("content_length", resp.ContentLength),
		)

		if c.config.EnableDecompression {
			resp.Body = c.wrapDecompression(resp)
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaxRetries, lastErr)
	}
	return nil, ErrMaxRetries
}

func (c *Client) recordFailure(guarded bool) {
	if guarded {
		c.breaker.RecordFailure()
	}
}

// Get performs a GET request to the specified URL.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(req)
}

// GetJSON fetches url and returns the body when the response is 2xx and the
// body is valid JSON. Every failure is logged and yields nil. The request is
// abandoned when the body stalls for longer than ReadTimeout.
func (c *Client) GetJSON(ctx context.Context, url string) json.RawMessage {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	resp, err := c.Get(ctx, url)
	if err != nil {
		c.logger.Warn("provider request failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("provider returned non-success status",
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	body, err := io.ReadAll(c.idleReader(resp.Body, cancel))
	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			err = cause
		}
		c.logger.Warn("reading provider response failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if !json.Valid(body) {
		c.logger.Warn("provider response is not JSON",
			slog.String("url", url),
			slog.Int("bytes", len(body)),
		)
		return nil
	}

	return json.RawMessage(body)
}

// idleReader cancels the request when no bytes arrive for ReadTimeout.
func (c *Client) idleReader(r io.Reader, cancel context.CancelCauseFunc) io.Reader {
	if c.config.ReadTimeout <= 0 {
		return r
	}
	return &idleTimeoutReader{
		r:       r,
		timeout: c.config.ReadTimeout,
		timer:   time.AfterFunc(c.config.ReadTimeout, func() { cancel(ErrReadTimeout) }),
	}
}

type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func (ir *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if err != nil {
		ir.timer.Stop()
		return n, err
	}
	if n > 0 {
		ir.timer.Reset(ir.timeout)
	}
	return n, nil
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() CircuitState {
	return c.breaker.State()
}

// ResetCircuit resets the circuit breaker to closed state.
func (c *Client) ResetCircuit() {
	c.breaker.Reset()
}

// StandardClient returns a standard *http.Client that routes through this
// client, for code that only accepts *http.Client.
func (c *Client) StandardClient() *http.Client {
	return &http.Client{
		Transport: &resilientTransport{client: c},
	}
}

type resilientTransport struct {
	client *Client
}

// RoundTrip implements http.RoundTripper.
func (t *resilientTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

var _ http.RoundTripper = (*resilientTransport)(nil)

func (c *Client) wrapDecompression(resp *http.Response) io.ReadCloser {
	encoding := resp.Header.Get(HeaderContentEncoding)
	if encoding == "" {
		return resp.Body
	}

	switch strings.ToLower(encoding) {
	case EncodingGzip:
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.Warn("failed to create gzip reader, returning raw body",
				slog.String("error", err.Error()),
			)
			return resp.Body
		}
		return &decompressReader{reader: reader, closer: resp.Body}

	case EncodingDeflate:
		return &decompressReader{reader: flate.NewReader(resp.Body), closer: resp.Body}

	case EncodingBrotli:
		return &decompressReader{reader: brotli.NewReader(resp.Body), closer: resp.Body}

	default:
		return resp.Body
	}
}

// decompressReader pairs a decoder with the original body closer.
type decompressReader struct {
	reader io.Reader
	closer io.Closer
}

func (d *decompressReader) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decompressReader) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		_ = closer.Close()
	}
	return d.closer.Close()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
