// Package service is the session facade: the only entry point callers use for login, logout,
// startup restoration and session state.
package service

import (
	"context"
	"errors"
	"log/slog"

	"event-admin-console/internal/apiclient"
	"event-admin-console/internal/logging"
	"event-admin-console/internal/navigation"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/cache"
	"event-admin-console/internal/session/domain"
	"event-admin-console/internal/telemetry"
	teldomain "event-admin-console/internal/telemetry/domain"
)

// EventSource tags every session event emitted by the facade.
const EventSource = "console"

// AuthClient is the minimal API client surface the facade needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Logout(ctx context.Context) error
	ClearCookies()
	SetListener(l apiclient.RefreshListener)
}

// SessionStore is the minimal token store surface the facade needs.
type SessionStore interface {
	Save(ctx context.Context, a domain.Artifacts) error
	Load(ctx context.Context) (domain.Artifacts, bool)
	Clear(ctx context.Context)
}

// LoginResult is either a profile or a login error, never both.
type LoginResult struct {
	Profile *domain.UserProfile
	Err     *domain.LoginError
}

// OK reports whether the login succeeded.
func (r LoginResult) OK() bool { return r.Err == nil && r.Profile != nil }

// LogoutResult carries the backend logout failure, if any. Local cleanup happens regardless.
type LogoutResult struct {
	Err *domain.LogoutError
}

// Options configures a Facade. Client, Store, Codec and Navigator are required.
type Options struct {
	Client       AuthClient
	Store        SessionStore
	Codec        security.Codec
	Navigator    navigation.Navigator
	Cache        *cache.Cache
	LandingRoute string
	Events       telemetry.EventEmitter
	Logger       *slog.Logger
}

// Facade owns the session cache and coordinates client, store and codec.
type Facade struct {
	client    AuthClient
	store     SessionStore
	codec     security.Codec
	navigator navigation.Navigator
	cache     *cache.Cache
	landing   string
	events    telemetry.EventEmitter
	logger    *slog.Logger
}

// New returns a Facade and registers it as the client's refresh listener.
func New(opts Options) (*Facade, error) {
	if opts.Client == nil || opts.Store == nil || opts.Codec == nil || opts.Navigator == nil {
		return nil, errors.New("session: client, store, codec and navigator are required")
	}
	c := opts.Cache
	if c == nil {
		c = cache.New()
	}
	landing := opts.LandingRoute
	if landing == "" {
		landing = "/"
	}
	f := &Facade{
		client:    opts.Client,
		store:     opts.Store,
		codec:     opts.Codec,
		navigator: opts.Navigator,
		cache:     c,
		landing:   landing,
		events:    opts.Events,
		logger:    logging.Or(opts.Logger),
	}
	opts.Client.SetListener(f)
	return f, nil
}

// State returns a snapshot of the session state.
func (f *Facade) State() domain.State { return f.cache.State() }

// Subscribe registers fn for every state change and returns an unsubscribe function.
func (f *Facade) Subscribe(fn func(domain.State)) (unsubscribe func()) {
	return f.cache.Subscribe(fn)
}

// Login authenticates, decodes the access token, persists the artifacts and marks the session
// authenticated. All failures come back in the result; the cache error holds the user-facing message.
func (f *Facade) Login(ctx context.Context, email, password string) LoginResult {
	f.cache.SetLoading(true)

	pair, err := f.client.Login(ctx, email, password)
	if err != nil {
		var loginErr *domain.LoginError
		if !errors.As(err, &loginErr) {
			loginErr = &domain.LoginError{Err: err}
		}
		return f.loginFailed(ctx, loginErr)
	}

	profile, err := f.codec.Decode(pair.AccessToken)
	if err != nil {
		return f.loginFailed(ctx, &domain.LoginError{Err: err})
	}

	artifacts := domain.Artifacts{Access: pair.AccessToken, Refresh: pair.RefreshToken, Profile: profile}
	if err := f.store.Save(ctx, artifacts); err != nil {
		f.store.Clear(ctx)
		return f.loginFailed(ctx, &domain.LoginError{Err: err})
	}

	f.cache.SetCredentials(profile)
	f.logger.Info("login succeeded", "user_id", profile.ID, "role_id", profile.RoleID)
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventLoginSuccess, EventSource).WithUser(profile.ID, profile.RoleID))
	return LoginResult{Profile: &profile}
}

func (f *Facade) loginFailed(ctx context.Context, loginErr *domain.LoginError) LoginResult {
	msg := loginErr.Message
	if msg == "" {
		msg = domain.DefaultLoginMessage
	}
	if f.cache.State().IsAuthenticated {
		f.cache.Clear()
	}
	f.cache.SetError(msg)
	f.logger.Warn("login failed", "status", loginErr.StatusCode, "error", loginErr)
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventLoginFailure, EventSource).WithMessage(msg))
	return LoginResult{Err: loginErr}
}

// Logout tells the backend (best-effort), then clears the store, the cache and cookies and hard-navigates
// to the landing route. Safe to call when already logged out.
func (f *Facade) Logout(ctx context.Context) LogoutResult {
	var result LogoutResult
	userID := ""
	if u := f.cache.State().User; u != nil {
		userID = u.ID
	}

	if err := f.client.Logout(ctx); err != nil {
		var logoutErr *domain.LogoutError
		if !errors.As(err, &logoutErr) {
			logoutErr = &domain.LogoutError{Err: err}
		}
		f.logger.Warn("backend logout failed, continuing local cleanup", "error", err)
		result.Err = logoutErr
	}

	f.store.Clear(ctx)
	f.cache.Clear()
	f.client.ClearCookies()
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventLogout, EventSource).WithUser(userID, ""))
	f.navigator.HardNavigate(ctx, f.landing)
	return result
}

// RestoreSession rebuilds the authenticated state from the store without any network call.
// It reports whether a session was restored. Partial or expired artifacts leave the cache
// unauthenticated and the store untouched.
func (f *Facade) RestoreSession(ctx context.Context) bool {
	f.cache.SetLoading(true)
	artifacts, ok := f.store.Load(ctx)
	if !ok || f.codec.IsExpired(artifacts.Access) {
		f.cache.SetLoading(false)
		f.logger.Debug("no session to restore", "stored", ok)
		return false
	}
	f.cache.SetCredentials(artifacts.Profile)
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventSessionRestored, EventSource).
		WithUser(artifacts.Profile.ID, artifacts.Profile.RoleID))
	return true
}

// TokensRefreshed keeps the cache in step with a rotated pair.
func (f *Facade) TokensRefreshed(ctx context.Context, profile domain.UserProfile) {
	f.cache.SetCredentials(profile)
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventTokenRefreshed, EventSource).WithUser(profile.ID, profile.RoleID))
}

// SessionTerminated resets the cache after a failed refresh cleared the store.
func (f *Facade) SessionTerminated(ctx context.Context) {
	userID := ""
	if u := f.cache.State().User; u != nil {
		userID = u.ID
	}
	f.cache.Clear()
	f.emit(ctx, teldomain.NewSessionEvent(teldomain.EventSessionTerminated, EventSource).WithUser(userID, ""))
}

func (f *Facade) emit(ctx context.Context, event *teldomain.SessionEvent) {
	if f.events == nil {
		return
	}
	telemetry.EmitAsync(f.events, ctx, event)
}
