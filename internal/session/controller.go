// Package session runs the authentication state machine: password, OTP
// and two-factor login, logout, profile cache updates and forced expiry
// after an unrecoverable token refresh.
package session

//go:generate mockgen -destination=mock_authapi_test.go -package=session . AuthAPI

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexjbarnes/admin-console/internal/credstore"
	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alexjbarnes/admin-console/internal/routes"
)

// DefaultChallengeTTL bounds how long a pending OTP or 2FA step can be
// resumed.
const DefaultChallengeTTL = 10 * time.Minute

// AuthAPI is the backend surface the controller drives.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	SendOtp(ctx context.Context, creds models.Credentials) error
	VerifyOtp(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	LoginTwoFactor(ctx context.Context, userID, code string) (*models.AuthResult, error)
	Logout(ctx context.Context) error
}

// Navigator moves the user between pages.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// NoticeLevel grades a user-facing message.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// Notice is a short message for the user.
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Config wires a Controller.
type Config struct {
	API          AuthAPI
	Store        credstore.Store
	Navigator    Navigator
	Notifier     Notifier
	Logger       *slog.Logger
	ChallengeTTL time.Duration
}

// Controller owns the session state. All methods are safe for
// concurrent use.
type Controller struct {
	api          AuthAPI
	store        credstore.Store
	nav          Navigator
	notifier     Notifier
	logger       *slog.Logger
	challengeTTL time.Duration

	initOnce sync.Once
	ready    chan struct{}

	mu        sync.Mutex
	state     State
	user      *models.UserProfile
	challenge Challenge

	// epoch increments whenever the session is torn down so responses
	// to calls started before that are dropped.
	epoch uint64
}

// New creates a controller in the Unknown state.
func New(cfg Config) *Controller {
	c := &Controller{
		api:          cfg.API,
		store:        cfg.Store,
		nav:          cfg.Navigator,
		notifier:     cfg.Notifier,
		logger:       cfg.Logger,
		challengeTTL: cfg.ChallengeTTL,
		ready:        make(chan struct{}),
	}

	if c.nav == nil {
		c.nav = &nopNavigator{}
	}

	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.challengeTTL <= 0 {
		c.challengeTTL = DefaultChallengeTTL
	}

	return c
}

// Ready is closed once Initialize has finished.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Snapshot returns a copy of the current state, user and challenge.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{State: c.state, Challenge: c.challenge}

	if c.user != nil {
		u := *c.user
		s.User = &u
	}

	return s
}

// Initialize reads the credential store once. A complete session makes
// the controller Authenticated; anything partial is cleared and the
// controller becomes Anonymous.
func (c *Controller) Initialize(ctx context.Context) error {
	var err error

	c.initOnce.Do(func() {
		defer close(c.ready)
		err = c.initialize(ctx)
	})

	return err
}

func (c *Controller) initialize(_ context.Context) error {
	token := c.store.AccessToken()
	user := c.store.User()

	c.mu.Lock()

	if token != "" && user != nil {
		c.state = Authenticated
		c.user = user
		c.mu.Unlock()

		c.logger.Debug("restored session", slog.String("user_id", user.ID))

		if routes.Classify(c.nav.Location()) == routes.Public {
			c.nav.Navigate(routes.Home)
		}

		return nil
	}

	c.state = Anonymous
	c.user = nil

	var err error
	if token != "" || user != nil || c.store.RefreshToken() != "" {
		c.logger.Debug("clearing partial session")

		if cerr := c.store.ClearAll(); cerr != nil {
			err = fmt.Errorf("clearing partial session: %w", cerr)
		}
	}

	c.mu.Unlock()

	if routes.IsPrivate(c.nav.Location()) {
		c.nav.Navigate(routes.Login)
	}

	return err
}

// LoginWithPassword submits an email or phone number with a password.
func (c *Controller) LoginWithPassword(ctx context.Context, identifier, password string) error {
	id, ok := ParseIdentifier(identifier)
	if !ok || password == "" {
		return fmt.Errorf("%w: email or phone and password are required", apperrors.ErrInvalidCredentials)
	}

	epoch := c.currentEpoch()

	creds := id.Credentials()
	creds.Password = password

	res, err := c.api.Login(ctx, creds)
	if err != nil {
		return authFailure(apperrors.ErrInvalidCredentials, err)
	}

	return c.complete(epoch, res, "Login successful")
}

// RequestOtp asks the backend to send a one-time code to identifier.
func (c *Controller) RequestOtp(ctx context.Context, identifier string) error {
	id, ok := ParseIdentifier(identifier)
	if !ok {
		return fmt.Errorf("%w: email or phone is required", apperrors.ErrInvalidCredentials)
	}

	epoch := c.currentEpoch()

	if err := c.api.SendOtp(ctx, id.Credentials()); err != nil {
		return fmt.Errorf("sending verification code: %w", err)
	}

	ch := Challenge{Kind: ChallengeOTP, Target: id.Value, Channel: id.Channel}

	c.mu.Lock()

	if c.epoch != epoch {
		c.mu.Unlock()
		return apperrors.ErrSessionEnded
	}

	c.setChallengeLocked(ch)
	c.mu.Unlock()

	c.notifier.Notify(Notice{
		Level:   NoticeInfo,
		Title:   "Verification code sent",
		Message: "Check " + id.Masked() + " for your code",
	})
	c.nav.Navigate(routes.OtpVerify)

	return nil
}

// VerifyOtp submits a one-time code. An empty identifier uses the
// target of the pending OTP challenge.
func (c *Controller) VerifyOtp(ctx context.Context, identifier, code string) error {
	if identifier == "" {
		ch := c.pendingChallenge(ChallengeOTP)
		if !ch.Pending() {
			return apperrors.ErrNoPendingChallenge
		}

		identifier = ch.Target
	}

	id, ok := ParseIdentifier(identifier)
	if !ok {
		return fmt.Errorf("%w: email or phone is required", apperrors.ErrInvalidCredentials)
	}

	if code == "" {
		return apperrors.ErrInvalidCode
	}

	epoch := c.currentEpoch()

	creds := id.Credentials()
	creds.OTP = code

	res, err := c.api.VerifyOtp(ctx, creds)
	if err != nil {
		return authFailure(apperrors.ErrInvalidCode, err)
	}

	return c.complete(epoch, res, "Verification successful")
}

// VerifyTwoFactor submits a 2FA code for the pending challenge. A wrong
// code leaves the challenge in place so the user can retry.
func (c *Controller) VerifyTwoFactor(ctx context.Context, code string) error {
	ch := c.pendingChallenge(ChallengeTwoFactor)
	if !ch.Pending() {
		return apperrors.ErrNoPendingChallenge
	}

	if code == "" {
		return apperrors.ErrInvalidCode
	}

	epoch := c.currentEpoch()

	res, err := c.api.LoginTwoFactor(ctx, ch.UserID, code)
	if err != nil {
		return authFailure(apperrors.ErrInvalidCode, err)
	}

	return c.complete(epoch, res, "Login successful")
}

// Logout ends the session. The backend call is best effort; local
// credentials are always cleared.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.api.Logout(ctx); err != nil {
		c.logger.Warn("backend logout failed", slog.String("error", err.Error()))
	}

	c.mu.Lock()

	err := c.store.ClearAll()
	if cerr := c.store.ClearChallenge(); cerr != nil && err == nil {
		err = cerr
	}

	c.state = Anonymous
	c.user = nil
	c.challenge = Challenge{}
	c.epoch++
	c.mu.Unlock()

	c.notifier.Notify(Notice{Level: NoticeSuccess, Title: "Logged out"})
	c.nav.Navigate(routes.Login)

	if err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}

	return nil
}

// UpdateUser merges patch into the cached profile. It does nothing
// unless a session is active and never touches the tokens.
func (c *Controller) UpdateUser(patch models.UserPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Authenticated || c.user == nil || patch.IsEmpty() {
		return nil
	}

	updated := patch.Apply(*c.user)
	if err := c.store.SetUser(updated); err != nil {
		return fmt.Errorf("caching updated profile: %w", err)
	}

	c.user = &updated

	return nil
}

// Expire ends the session after an unrecoverable token refresh. It is
// safe to call more than once.
func (c *Controller) Expire() {
	c.mu.Lock()

	if c.state != Authenticated {
		c.mu.Unlock()
		return
	}

	if err := c.store.ClearAll(); err != nil {
		c.logger.Error("clearing expired session", slog.String("error", err.Error()))
	}

	c.state = Anonymous
	c.user = nil
	c.epoch++
	c.mu.Unlock()

	c.logger.Info("session expired")
	c.notifier.Notify(Notice{
		Level:   NoticeWarning,
		Title:   "Session expired",
		Message: apperrors.ErrSessionExpired.Error(),
	})

	if routes.Classify(c.nav.Location()) != routes.Public {
		c.nav.Navigate(routes.Login)
	}
}

func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.epoch
}

// pendingChallenge returns the in-memory challenge of kind, falling back
// to the persisted flow slot so a step started by an earlier process can
// be resumed.
func (c *Controller) pendingChallenge(kind ChallengeKind) Challenge {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.challenge.Kind == kind {
		return c.challenge
	}

	if c.state == Authenticated {
		return Challenge{}
	}

	ch := decodeChallenge(c.store.Challenge())
	if ch.Kind != kind {
		return Challenge{}
	}

	c.challenge = ch
	c.state = ch.state()

	return ch
}

// setChallengeLocked records ch in memory and in the flow slot. c.mu
// must be held.
func (c *Controller) setChallengeLocked(ch Challenge) {
	c.challenge = ch
	c.state = ch.state()
	c.user = nil

	data, err := json.Marshal(ch)
	if err == nil {
		err = c.store.SetChallenge(data, c.challengeTTL)
	}

	if err != nil {
		c.logger.Warn("persisting pending challenge", slog.String("error", err.Error()))
	}
}

// complete applies a credential submission's outcome: either a 2FA
// challenge or a full session.
func (c *Controller) complete(epoch uint64, res *models.AuthResult, success string) error {
	if res == nil {
		return fmt.Errorf("%w: empty login response", apperrors.ErrMalformedEnvelope)
	}

	c.mu.Lock()

	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug("dropping stale login response")

		return apperrors.ErrSessionEnded
	}

	switch {
	case res.Require2FA && res.UserID != "":
		c.setChallengeLocked(Challenge{Kind: ChallengeTwoFactor, UserID: res.UserID})
		c.mu.Unlock()

		c.notifier.Notify(Notice{
			Level:   NoticeInfo,
			Title:   "2FA required",
			Message: "Please verify with your 2FA code",
		})
		c.nav.Navigate(routes.TwoFactorVerify)

		return nil

	case res.HasSession():
		if err := c.store.SaveSession(res.AccessToken, res.RefreshToken, *res.User); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("saving session: %w", err)
		}

		if err := c.store.ClearChallenge(); err != nil {
			c.logger.Warn("clearing pending challenge", slog.String("error", err.Error()))
		}

		user := *res.User
		c.user = &user
		c.state = Authenticated
		c.challenge = Challenge{}
		c.mu.Unlock()

		c.logger.Info("signed in", slog.String("user_id", user.ID))
		c.notifier.Notify(Notice{Level: NoticeSuccess, Title: success})
		c.nav.Navigate(routes.Home)

		return nil

	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: response has neither a session nor a challenge", apperrors.ErrMalformedEnvelope)
	}
}

// authFailure maps a rejected credential submission to sentinel while
// keeping the backend error in the chain.
func authFailure(sentinel, err error) error {
	he, ok := apperrors.AsHTTPError(err)
	if ok && (he.Status == http.StatusUnauthorized || he.Status == http.StatusBadRequest) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}

	return err
}

type nopNavigator struct {
	mu       sync.Mutex
	location string
}

func (n *nopNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.location
}

func (n *nopNavigator) Navigate(path string) {
	n.mu.Lock()
	n.location = path
	n.mu.Unlock()
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
