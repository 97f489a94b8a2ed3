package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/logging"
	"github.com/alexjbarnes/admin-console/internal/session"
	"github.com/stretchr/testify/require"
)

var _ session.AuthAPI = (*AuthService)(nil)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(context.Context, string) (string, error) {
	r.calls.Add(1)
	return "", apperrors.ErrSessionExpired
}

// recorded is one request seen by the test server.
type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Auth   string
}

type backend struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	srv      *httptest.Server
}

// newBackend serves every request with respond and records it.
func newBackend(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) *backend {
	t.Helper()

	b := &backend{t: t}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}

		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}

		b.mu.Lock()
		b.requests = append(b.requests, rec)
		b.mu.Unlock()

		respond(w, r)
	}))
	t.Cleanup(b.srv.Close)

	return b
}

func (b *backend) client(token string) *gateway.Client {
	return gateway.New(b.srv.URL, staticToken(token), b.srv.Client(), logging.Discard())
}

func (b *backend) last() recorded {
	b.mu.Lock()
	defer b.mu.Unlock()

	require.NotEmpty(b.t, b.requests)

	return b.requests[len(b.requests)-1]
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.requests)
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": status,
		"success":    status < 400,
		"message":    http.StatusText(status),
		"data":       data,
	})
}

func ok(data any) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, data)
	}
}
