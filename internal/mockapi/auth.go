package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"event-admin-console/internal/logging"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/domain"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse   = errors.New("refresh token reuse detected; all sessions revoked")
)

// Tokens is a freshly issued access/refresh pair.
type Tokens struct {
	Access  string
	Refresh string
	Profile domain.UserProfile
}

// Auth issues and rotates tokens for directory accounts.
type Auth struct {
	dir        *Directory
	sessions   *SessionStore
	issuer     *security.Issuer
	refreshTTL time.Duration
	nowF       func() time.Time
	logger     *slog.Logger
}

// NewAuth returns an Auth.
func NewAuth(dir *Directory, sessions *SessionStore, issuer *security.Issuer, refreshTTL time.Duration, logger *slog.Logger) *Auth {
	return &Auth{
		dir:        dir,
		sessions:   sessions,
		issuer:     issuer,
		refreshTTL: refreshTTL,
		nowF:       utcNow,
		logger:     logging.Or(logger),
	}
}

// Login checks credentials and opens a session.
func (a *Auth) Login(ctx context.Context, email, password string) (*Tokens, error) {
	p, err := a.dir.Authenticate(email, password)
	if err != nil {
		return nil, err
	}
	refresh, err := a.issuer.IssueRefresh()
	if err != nil {
		return nil, err
	}
	access, _, err := a.issuer.IssueAccess(p)
	if err != nil {
		return nil, err
	}
	a.sessions.Create(p.ID, refresh, a.nowF().Add(a.refreshTTL))
	a.logger.InfoContext(ctx, "login", "user_id", p.ID, "role_id", p.RoleID)
	return &Tokens{Access: access, Refresh: refresh, Profile: p}, nil
}

// Refresh rotates refreshToken. Presenting a token that was already rotated revokes every
// session of its user.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sess, state := a.sessions.find(refreshToken)
	switch state {
	case refreshUnknown:
		return nil, ErrInvalidRefreshToken
	case refreshRetired:
		n := a.sessions.RevokeUser(sess.userID)
		a.logger.WarnContext(ctx, "refresh token reuse", "user_id", sess.userID, "revoked", n)
		return nil, ErrRefreshTokenReuse
	}
	if a.sessions.expired(sess) || !security.RefreshTokenMatches(refreshToken, sess.refreshHash) {
		return nil, ErrInvalidRefreshToken
	}
	p, ok := a.dir.ActiveProfile(sess.userID)
	if !ok {
		a.sessions.Revoke(sess.id)
		return nil, ErrInvalidRefreshToken
	}

	newRefresh, err := a.issuer.IssueRefresh()
	if err != nil {
		return nil, err
	}
	if !a.sessions.Rotate(sess.id, sess.refreshHash, newRefresh, a.nowF().Add(a.refreshTTL)) {
		return nil, ErrInvalidRefreshToken
	}
	access, _, err := a.issuer.IssueAccess(p)
	if err != nil {
		return nil, err
	}
	a.logger.DebugContext(ctx, "refresh", "user_id", p.ID, "session_id", sess.id)
	return &Tokens{Access: access, Refresh: newRefresh, Profile: p}, nil
}

// Logout revokes the session refreshToken belongs to. Unknown tokens are ignored.
func (a *Auth) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	sess, state := a.sessions.find(refreshToken)
	if state != refreshCurrent {
		return
	}
	a.sessions.Revoke(sess.id)
	a.logger.InfoContext(ctx, "logout", "user_id", sess.userID)
}

// RevokeUser ends every session of userID.
func (a *Auth) RevokeUser(userID string) {
	a.sessions.RevokeUser(userID)
}

// Authorize validates a bearer access token and returns its profile.
func (a *Auth) Authorize(token string) (domain.UserProfile, error) {
	return a.issuer.ValidateAccess(token)
}
