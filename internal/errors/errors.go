package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Authentication flow errors.
var (
	ErrInvalidCredentials = errors.New("invalid email, phone or password")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrNoPendingChallenge = errors.New("no pending verification, please sign in again")
	ErrNotAuthenticated   = errors.New("not signed in")
)

// Session lifecycle errors.
var (
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrSessionExpired = errors.New("session expired, please sign in again")
	ErrSessionEnded   = errors.New("session ended while refreshing")
)

// Server/transport errors.
var (
	ErrAPIRequest        = errors.New("API request failed")
	ErrMalformedEnvelope = errors.New("unexpected API response")
)

// Kind classifies an HTTPError for callers that need to decide how to
// surface it.
type Kind int

const (
	KindClient Kind = iota
	KindNetwork
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "client"
	}
}

// HTTPError is the single normalized error shape for every backend call.
// Status is 0 when the request never produced a response (network
// failure or timeout).
type HTTPError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
	Details     []string
	Method      string
	Path        string
	RequestID   string

	// Err holds the underlying cause (transport error, decode error or
	// a sentinel such as ErrMalformedEnvelope).
	Err error
}

func (e *HTTPError) Error() string {
	var b strings.Builder

	if e.Status == 0 {
		fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Message)
	} else {
		fmt.Fprintf(&b, "%s %s (%d): %s", e.Method, e.Path, e.Status, e.Message)
	}

	if len(e.FieldErrors) > 0 {
		b.WriteString(" [")
		b.WriteString(e.fieldSummary())
		b.WriteString("]")
	}

	return b.String()
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) fieldSummary() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], ", "))
	}

	return strings.Join(parts, "; ")
}

// Kind reports the error class derived from the status and field errors.
func (e *HTTPError) Kind() Kind {
	switch {
	case e.Status == 0:
		return KindNetwork
	case e.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case e.Status == http.StatusForbidden:
		return KindForbidden
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case len(e.FieldErrors) > 0,
		e.Status == http.StatusBadRequest,
		e.Status == http.StatusUnprocessableEntity:
		return KindValidation
	case e.Status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// Transient reports whether retrying the same call later may succeed.
func (e *HTTPError) Transient() bool {
	return e.Status == 0 ||
		e.Status == http.StatusTooManyRequests ||
		e.Status >= 500
}

// AsHTTPError returns the HTTPError in err's chain, if any.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}

	return nil, false
}

// IsUnauthorized reports whether err carries a 401 from the backend.
func IsUnauthorized(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Status == http.StatusUnauthorized
}

// IsTransient reports whether err (or any error in its chain) is an
// HTTPError worth retrying after a backoff.
func IsTransient(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Transient()
}
