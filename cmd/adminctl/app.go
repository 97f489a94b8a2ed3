package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexjbarnes/admin-console/internal/api"
	"github.com/alexjbarnes/admin-console/internal/config"
	"github.com/alexjbarnes/admin-console/internal/credstore"
	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/guard"
	"github.com/alexjbarnes/admin-console/internal/logging"
	"github.com/alexjbarnes/admin-console/internal/refresh"
	"github.com/alexjbarnes/admin-console/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// routeAnnotation names the console page a command stands in for. The
// route guard checks it before the command runs.
const routeAnnotation = "route"

// environment is everything a run needs from the outside world.
type environment struct {
	in         io.Reader
	stdinFd    int // -1 when stdin is not a terminal
	out        io.Writer
	errOut     io.Writer
	loadConfig func() (*config.Config, error)
	openStore  func(*config.Config) (credstore.Store, error)
}

// app is the wired engine for one command invocation.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       credstore.Store
	client      *gateway.Client
	session     *session.Controller
	guard       *guard.Guard
	nav         *terminalNavigator
	auth        *api.AuthService
	users       *api.UserService
	roles       *api.RoleService
	permissions *api.PermissionService
	dashboard   *api.DashboardService
	reports     *api.ReportService
	analytics   *api.AnalyticsService
	settings    *api.SettingsService
	out         renderer
}

func newApp(cfg *config.Config, env environment, store credstore.Store, route string) *app {
	logger := logging.NewLoggerAt(cfg.Environment, logging.ParseLevel(cfg.LogLevel), env.errOut)

	client := gateway.New(cfg.APIBaseURL, store, gateway.NewHTTPClient(cfg.HTTPTimeout), logger)
	client.SetRefresher(refresh.New(store, client, logger))

	nav := newTerminalNavigator(route, env.errOut)
	auth := api.NewAuthService(client)

	ctrl := session.New(session.Config{
		API:          auth,
		Store:        store,
		Navigator:    nav,
		Notifier:     &terminalNotifier{w: env.errOut},
		Logger:       logger,
		ChallengeTTL: cfg.ChallengeTTL,
	})
	client.OnSessionExpired(ctrl.Expire)

	users := api.NewUserService(client)
	roles := api.NewRoleService(client)
	permissions := api.NewPermissionService(client)

	return &app{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		client:      client,
		session:     ctrl,
		guard:       guard.New(ctrl),
		nav:         nav,
		auth:        auth,
		users:       users,
		roles:       roles,
		permissions: permissions,
		dashboard:   api.NewDashboardService(users, roles, permissions),
		reports:     api.NewReportService(client),
		analytics:   api.NewAnalyticsService(client),
		settings:    api.NewSettingsService(client),
		out:         renderer{w: env.out, format: cfg.OutputFormat},
	}
}

// openStore opens the configured credential backend.
func openStore(cfg *config.Config) (credstore.Store, error) {
	sealer, err := credstore.NewSealer(cfg.CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("preparing credential key: %w", err)
	}

	switch cfg.CredentialBackend {
	case config.BackendRedis:
		return credstore.OpenRedis(cfg.RedisURL, cfg.RedisKeyPrefix, sealer)
	case config.BackendMemory:
		return credstore.NewMemory(), nil
	default:
		return credstore.OpenBolt(cfg.StateDBPath, sealer)
	}
}

// cli holds the flags and the lazily built app shared by all commands.
type cli struct {
	env environment

	output        string
	apiURL        string
	passwordStdin bool

	app   *app
	input *bufio.Reader
}

func newCLI(env environment) *cli {
	return &cli{env: env}
}

func (c *cli) close() {
	if c.app == nil {
		return
	}

	if err := c.app.store.Close(); err != nil {
		c.app.logger.Warn("closing credential store", slog.String("error", err.Error()))
	}
}

// prepare builds the app for cmd, initializes the session and runs the
// route guard. Commands without a route skip all of it.
func (c *cli) prepare(cmd *cobra.Command) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}

	cfg, err := c.env.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.output != "" {
		cfg.OutputFormat = strings.ToLower(c.output)
	}

	if c.apiURL != "" {
		cfg.APIBaseURL = strings.TrimRight(c.apiURL, "/")
	}

	if !validFormat(cfg.OutputFormat) {
		return fmt.Errorf("unknown output format %q (table, json or yaml)", cfg.OutputFormat)
	}

	store, err := c.env.openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	c.app = newApp(cfg, c.env, store, route)

	ctx := cmd.Context()

	if err := c.app.session.Initialize(ctx); err != nil {
		c.app.logger.Warn("initializing session", slog.String("error", err.Error()))
	}

	if err := c.app.guard.Await(ctx, route); err != nil {
		return err
	}

	c.app.nav.arm()

	return nil
}

// readSecret reads a password from the terminal without echo, or a
// single line of stdin when --password-stdin is set.
func (c *cli) readSecret(prompt string) (string, error) {
	if !c.passwordStdin {
		if c.env.stdinFd < 0 {
			return "", errors.New("stdin is not a terminal, pass --password-stdin")
		}

		fmt.Fprint(c.env.errOut, prompt)
		b, err := term.ReadPassword(c.env.stdinFd)
		fmt.Fprintln(c.env.errOut)

		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		return string(b), nil
	}

	if c.input == nil {
		c.input = bufio.NewReader(c.env.in)
	}

	line, err := c.input.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func routed(route string, cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}

	cmd.Annotations[routeAnnotation] = route

	return cmd
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
