package xtream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// Transport performs the HTTP calls. GetJSON must return nil on any failure.
// *httpclient.Client satisfies it.
type Transport interface {
	GetJSON(ctx context.Context, url string) json.RawMessage
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Client is an Xtream Codes API client. Every API call returns the raw
// provider payload, or nil when the call failed for any reason.
type Client struct {
	server    string
	creds     Credentials
	transport Transport
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithRateLimit caps outgoing requests per second. Zero or less disables pacing.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Xtream Codes API client.
func NewClient(server string, creds Credentials, transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		server:    trimServer(server),
		creds:     creds,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Server returns the provider base URL.
func (c *Client) Server() string {
	return c.server
}

// Credentials returns the credentials used for API calls.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// WithCredentials returns a copy of the client that authenticates with creds.
// The copy shares the transport and the rate limiter.
func (c *Client) WithCredentials(creds Credentials) *Client {
	clone := *c
	clone.creds = creds
	return &clone
}

func (c *Client) get(ctx context.Context, action string, params url.Values) json.RawMessage {
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Debug("rate limiter wait aborted",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return c.transport.GetJSON(ctx, APIURL(c.server, c.creds, action, params))
}

// Login calls player_api.php without an action.
func (c *Client) Login(ctx context.Context) json.RawMessage {
	return c.get(ctx, "", nil)
}

// Authenticate logs in and decodes the response. It returns nil unless both
// user_info and server_info are present.
func (c *Client) Authenticate(ctx context.Context) *AuthInfo {
	raw := c.Login(ctx)
	if raw == nil {
		return nil
	}

	var info AuthInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		c.logger.Warn("login response could not be decoded", slog.String("error", err.Error()))
		return nil
	}
	if !info.Valid() {
		return nil
	}
	return &info
}

// Categories fetches the category list of a stream class.
func (c *Client) Categories(ctx context.Context, class StreamClass) json.RawMessage {
	action := class.categoriesAction()
	if action == "" {
		return nil
	}
	return c.get(ctx, action, nil)
}

// Streams fetches the stream list of a stream class. A non-empty categoryID
// restricts the result to that category.
func (c *Client) Streams(ctx context.Context, class StreamClass, categoryID string) json.RawMessage {
	action := class.streamsAction()
	if action == "" {
		return nil
	}
	var params url.Values
	if categoryID != "" {
		params = url.Values{paramCategoryID: {categoryID}}
	}
	return c.get(ctx, action, params)
}

// SeriesInfo fetches seasons and episodes of one series.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) json.RawMessage {
	return c.get(ctx, actionGetSeriesInfo, url.Values{paramSeriesID: {seriesID}})
}

// VODInfo fetches the detail record of one movie.
func (c *Client) VODInfo(ctx context.Context, vodID string) json.RawMessage {
	return c.get(ctx, actionGetVODInfo, url.Values{paramVODID: {vodID}})
}

// ShortEPG fetches the upcoming programmes of a live stream. A limit of zero
// or less leaves the count to the provider.
func (c *Client) ShortEPG(ctx context.Context, streamID string, limit int) json.RawMessage {
	params := url.Values{paramStreamID: {streamID}}
	if limit > 0 {
		params.Set(paramLimit, strconv.Itoa(limit))
	}
	return c.get(ctx, actionGetShortEPG, params)
}

// FullEPG fetches every programme the provider holds for a live stream.
func (c *Client) FullEPG(ctx context.Context, streamID string) json.RawMessage {
	return c.get(ctx, actionGetSimpleDataTable, url.Values{paramStreamID: {streamID}})
}

// XMLTVURL returns the URL of the full XMLTV guide.
func (c *Client) XMLTVURL() string {
	return XMLTVURL(c.server, c.creds)
}

// XMLTV opens the full XMLTV guide as a stream. The caller must close it.
func (c *Client) XMLTV(ctx context.Context) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.transport.Get(ctx, c.XMLTVURL())
	if err != nil {
		return nil, fmt.Errorf("fetching xmltv: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetching xmltv: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetching xmltv: unexpected content type %q", ct)
	}
	return resp.Body, nil
}
