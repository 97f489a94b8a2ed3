// Package refresh renews the access token with at most one backend call
// in flight. Concurrent callers attach to the running RefreshCycle and
// share its outcome.
package refresh

//go:generate mockgen -destination=mock_renewer_test.go -package=refresh . Renewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexjbarnes/admin-console/internal/credstore"
	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// Renewer exchanges a refresh token for a new token pair. It is the
// only path to the backend refresh endpoint.
type Renewer interface {
	RenewTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// RefreshCycle is one in-flight renewal. Done is closed when it
// resolves; Token and Err are valid only after that.
type RefreshCycle struct {
	StartedAt time.Time

	done  chan struct{}
	token string
	err   error
}

// Done returns a channel closed when the cycle resolves.
func (c *RefreshCycle) Done() <-chan struct{} { return c.done }

// Result returns the renewed access token or the failure. Only valid
// after Done is closed.
func (c *RefreshCycle) Result() (string, error) { return c.token, c.err }

// Coordinator owns the single-flight renewal.
type Coordinator struct {
	store   credstore.Store
	renewer Renewer
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *RefreshCycle
}

// New creates a coordinator writing renewed tokens to store.
func New(store credstore.Store, renewer Renewer, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Coordinator{
		store:   store,
		renewer: renewer,
		logger:  logger,
		now:     time.Now,
	}
}

// InFlight returns the running cycle, or nil.
func (c *Coordinator) InFlight() *RefreshCycle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Refresh returns a fresh access token. stale is the token the caller's
// failed request carried; if the store already holds a different one,
// an earlier cycle renewed it and no backend call is made.
//
// The cycle itself is detached from ctx so one caller giving up does
// not fail the others. ctx only bounds how long this caller waits.
func (c *Coordinator) Refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()

	cycle := c.current
	if cycle == nil {
		if current := c.store.AccessToken(); current != "" && current != stale {
			c.mu.Unlock()
			return current, nil
		}

		cycle = &RefreshCycle{StartedAt: c.now(), done: make(chan struct{})}
		c.current = cycle

		go c.run(context.WithoutCancel(ctx), cycle)
	}

	c.mu.Unlock()

	select {
	case <-cycle.done:
		return cycle.Result()
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context, cycle *RefreshCycle) {
	cycle.token, cycle.err = c.renew(ctx)

	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	close(cycle.done)

	if cycle.err != nil {
		c.logger.Warn("refresh cycle failed",
			slog.Duration("elapsed", c.now().Sub(cycle.StartedAt)),
			slog.String("error", cycle.err.Error()),
		)

		return
	}

	c.logger.Debug("refresh cycle succeeded",
		slog.Duration("elapsed", c.now().Sub(cycle.StartedAt)),
	)
}

// renew runs the backend exchange. A failure clears the store unless
// the session it was renewing has already been replaced, in which case
// the cycle ends with ErrSessionEnded and writes nothing.
func (c *Coordinator) renew(ctx context.Context) (string, error) {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		if !c.clear(refreshToken) {
			return "", apperrors.ErrSessionEnded
		}

		return "", apperrors.ErrNoRefreshToken
	}

	pair, err := c.renewer.RenewTokens(ctx, refreshToken)
	if err != nil {
		if !c.clear(refreshToken) {
			return "", apperrors.ErrSessionEnded
		}

		return "", fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, err)
	}

	rotated, err := c.store.RotateTokens(refreshToken, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		if !c.clear(refreshToken) {
			return "", apperrors.ErrSessionEnded
		}

		return "", fmt.Errorf("storing renewed tokens: %w", err)
	}

	if !rotated {
		return "", apperrors.ErrSessionEnded
	}

	return pair.AccessToken, nil
}

// clear removes the session that refreshToken belongs to. It reports
// false when the store has moved on to another session.
func (c *Coordinator) clear(refreshToken string) bool {
	cleared, err := c.store.ClearIf(refreshToken)
	if err != nil {
		c.logger.Error("clearing credentials after failed refresh", slog.String("error", err.Error()))
		return true
	}

	if !cleared {
		c.logger.Debug("session replaced during refresh, leaving it in place")
	}

	return cleared
}
