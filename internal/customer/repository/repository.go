// Package repository creates and lists customers through the backend REST API.
package repository

import (
	"context"

	"event-admin-console/internal/customer/domain"
)

// Repository defines access to customers.
type Repository interface {
	// Create returns the created customer and the backend message.
	Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, string, error)
	List(ctx context.Context) ([]domain.Customer, error)
}
