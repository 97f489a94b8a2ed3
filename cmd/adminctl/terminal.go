package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/alexjbarnes/admin-console/internal/routes"
	"github.com/alexjbarnes/admin-console/internal/session"
)

// nextSteps maps a navigation target to the command that continues
// there.
var nextSteps = map[string]string{
	routes.Login:           "adminctl login <email-or-phone>",
	routes.OtpVerify:       "adminctl otp verify <code>",
	routes.TwoFactorVerify: "adminctl 2fa verify <code>",
}

// terminalNavigator tracks the page a command stands for. Once armed,
// navigations that need user action are printed as the next command to
// run. Navigations during startup are reported by the route guard
// instead.
type terminalNavigator struct {
	mu       sync.Mutex
	w        io.Writer
	location string
	armed    bool
}

func newTerminalNavigator(route string, w io.Writer) *terminalNavigator {
	return &terminalNavigator{w: w, location: route}
}

func (n *terminalNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.location
}

func (n *terminalNavigator) Navigate(path string) {
	n.mu.Lock()
	n.location = path
	armed := n.armed
	n.mu.Unlock()

	if !armed {
		return
	}

	if next, ok := nextSteps[path]; ok {
		fmt.Fprintf(n.w, "next: %s\n", next)
	}
}

func (n *terminalNavigator) arm() {
	n.mu.Lock()
	n.armed = true
	n.mu.Unlock()
}

// terminalNotifier prints notices to stderr.
type terminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func (t *terminalNotifier) Notify(n session.Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n.Message == "" {
		fmt.Fprintf(t.w, "[%s] %s\n", levelLabel(n.Level), n.Title)
		return
	}

	fmt.Fprintf(t.w, "[%s] %s: %s\n", levelLabel(n.Level), n.Title, n.Message)
}

func levelLabel(l session.NoticeLevel) string {
	switch l {
	case session.NoticeSuccess:
		return "ok"
	case session.NoticeWarning:
		return "warn"
	case session.NoticeError:
		return "error"
	default:
		return "info"
	}
}
