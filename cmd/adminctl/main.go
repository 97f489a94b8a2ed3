package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/admin-console/internal/config"
	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/guard"
	"golang.org/x/term"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], defaultEnvironment())

	stop()

	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultEnvironment() environment {
	fd := -1
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fd = int(os.Stdin.Fd())
	}

	return environment{
		in:         os.Stdin,
		stdinFd:    fd,
		out:        os.Stdout,
		errOut:     os.Stderr,
		loadConfig: config.Load,
		openStore:  openStore,
	}
}

func run(ctx context.Context, args []string, env environment) error {
	c := newCLI(env)
	defer c.close()

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(env.out)
	root.SetErr(env.errOut)

	return root.ExecuteContext(ctx)
}

// reportError prints err with whatever extra guidance it carries.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)

	var re *guard.RedirectError
	if errors.As(err, &re) {
		fmt.Fprintf(w, "hint: %s\n", re.Hint())
		return
	}

	if he, ok := apperrors.AsHTTPError(err); ok {
		for _, d := range he.Details {
			fmt.Fprintf(w, "  - %s\n", d)
		}

		if he.RequestID != "" {
			fmt.Fprintf(w, "request id: %s\n", he.RequestID)
		}
	}

	if errors.Is(err, apperrors.ErrSessionExpired) {
		fmt.Fprintln(w, "hint: sign in again with: adminctl login <email-or-phone>")
	}
}
