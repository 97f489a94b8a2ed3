// Package gateway is the single channel to the admin backend. It
// attaches the bearer token, unwraps the response envelope into one
// normalized error shape, and renews an expired access token once per
// request through a Refresher.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/google/uuid"
)

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// DefaultTimeout is the timeout for the HTTP client used when no
	// custom client is provided.
	DefaultTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads to prevent a
	// misbehaving server from consuming unbounded memory.
	maxAPIResponseBytes = 1024 * 1024

	// maxDownloadBytes caps streamed downloads such as report PDFs.
	maxDownloadBytes = 64 * 1024 * 1024

	// RequestIDHeader carries a per-attempt correlation id.
	RequestIDHeader = "X-Request-ID"

	refreshPath = "/auth/refresh"
)

// TokenSource supplies the access token attached to each request.
type TokenSource interface {
	AccessToken() string
}

// Refresher renews the access token after a 401. stale is the token the
// failed request carried.
type Refresher interface {
	Refresh(ctx context.Context, stale string) (string, error)
}

// Client talks to the admin REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	refresher  Refresher
	onExpired  func()
	logger     *slog.Logger
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the bearer token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewHTTPClient returns an http.Client with the given timeout and the
// same-host redirect policy. A zero timeout uses DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: sameHostRedirectPolicy,
	}
}

// New creates a gateway for baseURL. If httpClient is nil, a client
// from NewHTTPClient(DefaultTimeout) is used.
func New(baseURL string, tokens TokenSource, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     logger,
	}
}

// SetRefresher installs the token renewer. Without one every 401 is
// terminal. Call before the client is shared between goroutines.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// OnSessionExpired registers fn to run when a 401 could not be
// recovered by a refresh. Call before the client is shared between
// goroutines.
func (c *Client) OnSessionExpired(fn func()) {
	c.onExpired = fn
}

// requestOptions collects per-call settings.
type requestOptions struct {
	query   url.Values
	refresh bool
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

// WithQuery appends query parameters to the request URL.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		o.query = q
	}
}

// WithoutRefresh marks the call as a credential submission. A 401 is
// returned as-is instead of triggering a token refresh.
func WithoutRefresh() RequestOption {
	return func(o *requestOptions) {
		o.refresh = false
	}
}

// attempt is one logical request threaded through the retry path. It is
// built once per Do call and never shared.
type attempt struct {
	method  string
	path    string
	query   url.Values
	body    []byte
	retried bool

	// sink receives the raw body of a 2xx response instead of the
	// envelope decoder.
	sink io.Writer
}

// Do sends one request and decodes the envelope's data into out (which
// may be nil). Any failure is returned as *errors.HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	o := requestOptions{refresh: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &attempt{method: method, path: path, query: o.query}

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &apperrors.HTTPError{
				Method:  method,
				Path:    path,
				Message: "could not encode request",
				Err:     fmt.Errorf("marshalling request body: %w", err),
			}
		}

		a.body = payload
	}

	return c.exchange(ctx, a, o, out)
}

// Download sends a GET to path and streams a successful response body to
// w without envelope decoding. Failures still arrive as an envelope and
// are returned as *errors.HTTPError. A 401 is refreshed like in Do;
// nothing is written to w before the final attempt succeeds.
func (c *Client) Download(ctx context.Context, path string, w io.Writer, opts ...RequestOption) error {
	o := requestOptions{refresh: true}
	for _, opt := range opts {
		opt(&o)
	}

	a := &attempt{method: http.MethodGet, path: path, query: o.query, sink: w}

	return c.exchange(ctx, a, o, nil)
}

// exchange sends a and renews the access token once on a 401.
func (c *Client) exchange(ctx context.Context, a *attempt, o requestOptions, out any) error {
	method, path := a.method, a.path

	token := c.accessToken()

	err := c.send(ctx, a, token, out)
	if err == nil || !o.refresh || token == "" || c.refresher == nil || !apperrors.IsUnauthorized(err) {
		return err
	}

	a.retried = true

	fresh, rerr := c.refresher.Refresh(ctx, token)
	if rerr != nil {
		if ctx.Err() != nil {
			return err
		}

		// The session this request belonged to is gone and another
		// may have replaced it. Expiring now would end the new one.
		if errors.Is(rerr, apperrors.ErrSessionEnded) {
			c.logger.Debug("session ended during refresh",
				slog.String("method", method),
				slog.String("path", path),
			)

			return err
		}

		c.logger.Warn("token refresh failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", rerr.Error()),
		)
		c.expire()

		return err
	}

	return c.send(ctx, a, fresh, out)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// RenewTokens exchanges a refresh token for a new token pair. It sends
// no bearer token and never triggers a refresh itself.
func (c *Client) RenewTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, fmt.Errorf("marshalling refresh request: %w", err)
	}

	a := &attempt{method: http.MethodPost, path: refreshPath, body: payload, retried: true}

	var pair models.TokenPair
	if err := c.send(ctx, a, "", &pair); err != nil {
		return nil, fmt.Errorf("refreshing tokens: %w", err)
	}

	if pair.AccessToken == "" {
		return nil, fmt.Errorf("refreshing tokens: %w: no access token in response", apperrors.ErrMalformedEnvelope)
	}

	return &pair, nil
}

func (c *Client) accessToken() string {
	if c.tokens == nil {
		return ""
	}

	return c.tokens.AccessToken()
}

func (c *Client) expire() {
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) url(a *attempt) string {
	u := c.baseURL + a.path
	if len(a.query) > 0 {
		u += "?" + a.query.Encode()
	}

	return u
}

// send performs one HTTP exchange for a with the given bearer token.
func (c *Client) send(ctx context.Context, a *attempt, token string, out any) error {
	requestID := uuid.NewString()

	fail := func(he *apperrors.HTTPError) *apperrors.HTTPError {
		he.Method = a.method
		he.Path = a.path

		if he.RequestID == "" {
			he.RequestID = requestID
		}

		return he
	}

	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}

	req, err := http.NewRequestWithContext(ctx, a.method, c.url(a), body)
	if err != nil {
		return fail(&apperrors.HTTPError{
			Message: "could not build request",
			Err:     fmt.Errorf("creating request: %w", err),
		})
	}

	if a.sink != nil {
		req.Header.Set("Accept", "*/*")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	req.Header.Set(RequestIDHeader, requestID)

	if a.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors (timeouts, connection refused, DNS failures)
		// carry status 0 and are transient by nature.
		return fail(&apperrors.HTTPError{
			Message: "network error, check your connection and try again",
			Err:     fmt.Errorf("sending request to %s: %w", a.path, err),
		})
	}
	defer resp.Body.Close()

	if a.sink != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		n, err := io.Copy(a.sink, io.LimitReader(resp.Body, maxDownloadBytes))

		c.logger.Debug("api download",
			slog.String("path", a.path),
			slog.Int64("bytes", n),
			slog.String("request_id", requestID),
			slog.Duration("elapsed", time.Since(start)),
		)

		if err != nil {
			return fail(&apperrors.HTTPError{
				Message: "download interrupted",
				Err:     fmt.Errorf("copying response from %s: %w", a.path, err),
			})
		}

		return nil
	}

	// Cap response reads at 1MB. API responses are small JSON payloads.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return fail(&apperrors.HTTPError{
			Message: "network error while reading the response",
			Err:     fmt.Errorf("reading response from %s: %w", a.path, err),
		})
	}

	c.logger.Debug("api request",
		slog.String("method", a.method),
		slog.String("path", a.path),
		slog.Int("status", resp.StatusCode),
		slog.Bool("retried", a.retried),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)),
	)

	if he := decodeEnvelope(resp.StatusCode, raw, out); he != nil {
		if echoed := resp.Header.Get(RequestIDHeader); echoed != "" {
			he.RequestID = echoed
		}

		return fail(he)
	}

	return nil
}
