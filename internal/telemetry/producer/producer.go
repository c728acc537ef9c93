// Package producer publishes session events to a message broker (Kafka) for the worker to forward.
package producer

import (
	"context"

	"event-admin-console/internal/telemetry/domain"
)

// Producer emits session events. It satisfies telemetry.EventEmitter so it can be fanned out with other emitters.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; use telemetry.EmitAsync from request paths.
	Emit(ctx context.Context, event *domain.SessionEvent) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
