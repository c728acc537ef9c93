package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"event-admin-console/internal/session/domain"
)

// Auth endpoints.
const (
	LoginPath   = "/api/Auth/login"
	RefreshPath = "/api/Auth/refresh"
	LogoutPath  = "/api/Auth/logout"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges credentials for a token pair. It bypasses the refresh state machine so a
// rejected password never triggers a refresh. Failures are *domain.LoginError carrying the
// backend message when there is one.
func (c *Client) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	if c == nil {
		return domain.TokenPair{}, &domain.LoginError{Err: ErrNotInitialized}
	}
	resp, _, err := c.issue(ctx, Request{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body:   loginRequest{Email: email, Password: password},
	})
	if err != nil {
		return domain.TokenPair{}, &domain.LoginError{Err: err}
	}
	if !resp.OK() {
		apiErr := newAPIError("login", resp)
		return domain.TokenPair{}, &domain.LoginError{Message: backendMessage(resp), StatusCode: resp.StatusCode, Err: apiErr}
	}

	var env Envelope[TokenResult]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return domain.TokenPair{}, &domain.LoginError{StatusCode: resp.StatusCode, Err: err}
	}
	if env.IsError || env.StatusCode != http.StatusOK {
		return domain.TokenPair{}, &domain.LoginError{
			Message:    backendMessage(resp),
			StatusCode: env.StatusCode,
			Err:        newAPIError("login", resp),
		}
	}
	pair := domain.TokenPair{AccessToken: env.Result.Token, RefreshToken: env.Result.RefreshToken}
	if !pair.Valid() {
		return domain.TokenPair{}, &domain.LoginError{StatusCode: env.StatusCode, Err: ErrMissingTokens}
	}
	return pair, nil
}

// Logout tells the backend the session is over. It is best-effort: the error is reported as
// *domain.LogoutError for logging, and the refresh state machine is never entered.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return &domain.LogoutError{Err: ErrNotInitialized}
	}
	_, refresh := c.store.Tokens(ctx)
	var body any
	if refresh != "" {
		body = refreshRequest{RefreshToken: refresh}
	}
	resp, _, err := c.issue(ctx, Request{Method: http.MethodPost, Path: LogoutPath, Body: body})
	if err != nil {
		return &domain.LogoutError{Err: err}
	}
	if !resp.OK() {
		return &domain.LogoutError{Err: newAPIError("logout", resp)}
	}
	return nil
}

// backendMessage is the message the backend supplied, or "" when only a status text is available.
func backendMessage(resp *Response) string {
	msg := responseMessage(resp)
	if msg == http.StatusText(resp.StatusCode) {
		return ""
	}
	return msg
}
