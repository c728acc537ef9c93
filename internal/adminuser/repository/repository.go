// Package repository manages admin users, roles and dashboard statistics through the backend REST API.
package repository

import (
	"context"

	"event-admin-console/internal/adminuser/domain"
)

// Repository defines access to admin users.
type Repository interface {
	List(ctx context.Context) ([]domain.AdminUser, error)
	Get(ctx context.Context, id string) (*domain.AdminUser, error)
	Create(ctx context.Context, req domain.CreateAdminRequest) (*domain.AdminUser, error)
	Update(ctx context.Context, id string, req domain.UpdateAdminRequest) (*domain.AdminUser, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, active bool) (*domain.AdminUser, error)
	ResetPassword(ctx context.Context, id, newPassword string) error
	ListRoles(ctx context.Context) ([]domain.Role, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}
