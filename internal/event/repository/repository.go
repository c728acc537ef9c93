// Package repository reads and writes events through the backend REST API.
package repository

import (
	"context"

	"event-admin-console/internal/event/domain"
)

// Repository defines access to events.
type Repository interface {
	List(ctx context.Context) ([]domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, req domain.CreateEventRequest) (*domain.Event, error)
	// CreateFull creates an event with venue, branding and administrator in one call. Returns the backend message.
	CreateFull(ctx context.Context, req domain.CreateFullEventRequest) (string, error)
	Update(ctx context.Context, id string, req domain.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Event, error)
}
