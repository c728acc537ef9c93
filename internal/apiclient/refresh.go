package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"event-admin-console/internal/session/domain"
)

// errSessionGone is returned to callers that lost the race with a refresh that terminated the session.
var errSessionGone = errors.New("session was terminated by a concurrent refresh")

// refreshSession exchanges refreshToken for a new pair and applies the outcome: persist and notify
// on success; clear, notify and hard-navigate on failure.
//
// With single-flight enabled, callers holding the same refresh token share one exchange keyed by
// that token. A caller arriving after the flight landed finds the stored token already rotated and
// returns without a second exchange.
func (c *Client) refreshSession(ctx context.Context, refreshToken string) error {
	if !c.singleFlight {
		return c.refreshAndApply(ctx, refreshToken)
	}
	_, err, _ := c.refreshGroup.Do(refreshToken, func() (any, error) {
		_, current := c.store.Tokens(ctx)
		switch current {
		case refreshToken:
			return nil, c.refreshAndApply(context.WithoutCancel(ctx), refreshToken)
		case "":
			return nil, &domain.RefreshError{Err: errSessionGone}
		default:
			return nil, nil
		}
	})
	return err
}

func (c *Client) refreshAndApply(ctx context.Context, refreshToken string) error {
	artifacts, err := c.exchange(ctx, refreshToken)
	if err != nil {
		c.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failure")))
		c.logger.Warn("token refresh failed, terminating session", "error", err)
		c.terminate(ctx)
		return err
	}
	c.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	if err := c.store.Save(ctx, artifacts); err != nil {
		c.logger.Warn("persist refreshed tokens failed", "error", err)
	}
	if l := c.currentListener(); l != nil {
		l.TokensRefreshed(ctx, artifacts.Profile)
	}
	c.logger.Info("token refreshed", "user_id", artifacts.Profile.ID)
	return nil
}

// exchange calls the refresh endpoint. It never enters the refresh state machine itself.
func (c *Client) exchange(ctx context.Context, refreshToken string) (domain.Artifacts, error) {
	resp, _, err := c.issue(ctx, Request{
		Method: http.MethodPost,
		Path:   RefreshPath,
		Body:   refreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return domain.Artifacts{}, &domain.RefreshError{Err: err}
	}
	if !resp.OK() {
		return domain.Artifacts{}, &domain.RefreshError{StatusCode: resp.StatusCode, Err: newAPIError("refresh", resp)}
	}
	var env Envelope[TokenResult]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return domain.Artifacts{}, &domain.RefreshError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode refresh envelope: %w", err)}
	}
	if env.IsError || (env.StatusCode != 0 && env.StatusCode != http.StatusOK) {
		return domain.Artifacts{}, &domain.RefreshError{StatusCode: env.StatusCode, Err: newAPIError("refresh", resp)}
	}
	pair := domain.TokenPair{AccessToken: env.Result.Token, RefreshToken: env.Result.RefreshToken}
	if !pair.Valid() {
		return domain.Artifacts{}, &domain.RefreshError{StatusCode: resp.StatusCode, Err: ErrMissingTokens}
	}
	profile, err := c.codec.Decode(pair.AccessToken)
	if err != nil {
		return domain.Artifacts{}, &domain.RefreshError{StatusCode: resp.StatusCode, Err: err}
	}
	return domain.Artifacts{Access: pair.AccessToken, Refresh: pair.RefreshToken, Profile: profile}, nil
}

// terminate clears the stored session, tells the listener, then hard-navigates to the landing route.
func (c *Client) terminate(ctx context.Context) {
	c.store.Clear(ctx)
	if l := c.currentListener(); l != nil {
		l.SessionTerminated(ctx)
	}
	c.navigator.HardNavigate(ctx, c.landing)
}
