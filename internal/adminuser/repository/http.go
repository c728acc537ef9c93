package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"event-admin-console/internal/adminuser/domain"
	"event-admin-console/internal/apiclient"
)

const (
	usersPath = "/api/Admin/users"
	rolesPath = "/api/Admin/roles"
	statsPath = "/api/Admin/dashboard/stats"
)

// ErrEmptyID is returned when an id argument is blank.
var ErrEmptyID = errors.New("admin user id is required")

// HTTPRepository implements Repository over the API client.
type HTTPRepository struct {
	client *apiclient.Client
}

var _ Repository = (*HTTPRepository)(nil)

// NewHTTPRepository returns a repository using client.
func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func userPath(id string, suffix ...string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", ErrEmptyID
	}
	return strings.Join(append([]string{usersPath, url.PathEscape(id)}, suffix...), "/"), nil
}

func (r *HTTPRepository) user(ctx context.Context, method, path string, body any) (*domain.AdminUser, error) {
	u, err := apiclient.Call[domain.AdminUser](ctx, r.client, apiclient.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all admin users.
func (r *HTTPRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	return apiclient.Call[[]domain.AdminUser](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: usersPath})
}

// Get returns one admin user.
func (r *HTTPRepository) Get(ctx context.Context, id string) (*domain.AdminUser, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}
	return r.user(ctx, http.MethodGet, path, nil)
}

// Create validates req and creates an admin user.
func (r *HTTPRepository) Create(ctx context.Context, req domain.CreateAdminRequest) (*domain.AdminUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	return r.user(ctx, http.MethodPost, usersPath, req)
}

// Update applies a partial update.
func (r *HTTPRepository) Update(ctx context.Context, id string, req domain.UpdateAdminRequest) (*domain.AdminUser, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.user(ctx, http.MethodPut, path, req)
}

// Delete removes an admin user.
func (r *HTTPRepository) Delete(ctx context.Context, id string) error {
	path, err := userPath(id)
	if err != nil {
		return err
	}
	return r.client.DoJSON(ctx, apiclient.Request{Method: http.MethodDelete, Path: path}, nil)
}

// SetStatus activates or deactivates an admin user.
func (r *HTTPRepository) SetStatus(ctx context.Context, id string, active bool) (*domain.AdminUser, error) {
	path, err := userPath(id, "status")
	if err != nil {
		return nil, err
	}
	return r.user(ctx, http.MethodPut, path, map[string]bool{"isActive": active})
}

// ResetPassword sets a new password for an admin user.
func (r *HTTPRepository) ResetPassword(ctx context.Context, id, newPassword string) error {
	path, err := userPath(id, "reset-password")
	if err != nil {
		return err
	}
	if err := domain.ValidateNewPassword(newPassword); err != nil {
		return err
	}
	return r.client.DoJSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   map[string]string{"newPassword": newPassword},
	}, nil)
}

// ListRoles returns the assignable roles.
func (r *HTTPRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return apiclient.Call[[]domain.Role](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: rolesPath})
}

// DashboardStats returns the dashboard statistics. Both an enveloped and a bare object are accepted.
func (r *HTTPRepository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var raw json.RawMessage
	if err := r.client.DoJSON(ctx, apiclient.Request{Method: http.MethodGet, Path: statsPath}, &raw); err != nil {
		return nil, err
	}
	var env struct {
		Result domain.DashboardStats `json:"result"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Result != nil {
		return env.Result, nil
	}
	stats := domain.DashboardStats{}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
