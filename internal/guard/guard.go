// Package guard decides whether a route may be shown for the current
// session state.
package guard

import (
	"context"
	"fmt"

	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/alexjbarnes/admin-console/internal/session"
)

// Outcome is what the caller should do with a route.
type Outcome int

const (
	// Render shows the route.
	Render Outcome = iota

	// Loading defers the decision until the session is initialized.
	Loading

	// Redirect sends the user to Decision.Target instead.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the result of checking a route.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide applies the access rules for class in state. Challenge routes
// always render so a pending step can be completed or abandoned.
func Decide(state session.State, class routes.Class) Decision {
	if state == session.Unknown {
		return Decision{Outcome: Loading}
	}

	authenticated := state == session.Authenticated

	switch class {
	case routes.Private:
		if !authenticated {
			return Decision{Outcome: Redirect, Target: routes.Login}
		}
	case routes.Public:
		if authenticated {
			return Decision{Outcome: Redirect, Target: routes.Home}
		}
	}

	return Decision{Outcome: Render}
}

// StateSource is the session view the guard needs.
type StateSource interface {
	Ready() <-chan struct{}
	State() session.State
}

// Guard checks routes against a live session.
type Guard struct {
	session StateSource
}

// New creates a Guard over s.
func New(s StateSource) *Guard {
	return &Guard{session: s}
}

// Check decides path without waiting. It reports Loading until the
// session has been initialized.
func (g *Guard) Check(path string) Decision {
	return Decide(g.session.State(), routes.Classify(path))
}

// Await waits for session initialization and then decides path. A
// redirect is returned as a *RedirectError.
func (g *Guard) Await(ctx context.Context, path string) error {
	select {
	case <-g.session.Ready():
	case <-ctx.Done():
		return fmt.Errorf("waiting for session: %w", ctx.Err())
	}

	d := g.Check(path)
	if d.Outcome == Redirect {
		return &RedirectError{From: path, To: d.Target}
	}

	return nil
}

// RedirectError reports that a route is not available in the current
// state.
type RedirectError struct {
	From string
	To   string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s is not available, go to %s", e.From, e.To)
}

// Hint returns a short instruction for the user.
func (e *RedirectError) Hint() string {
	switch e.To {
	case routes.Login:
		return "sign in first with: adminctl login <email-or-phone>"
	case routes.Home:
		return "already signed in, run adminctl logout to switch accounts"
	default:
		return "continue at " + e.To
	}
}
