package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"event-admin-console/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

var inflight sync.WaitGroup

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// emitter and event may be nil; EmitAsync then returns immediately.
// The goroutine detaches from ctx's cancellation so a finished command does not abort the emit.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *domain.SessionEvent) {
	if emitter == nil || event == nil {
		return
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			slog.Warn("telemetry: async emit failed", "event_type", event.EventType, "error", err)
		}
	}()
}

// Drain waits for in-flight EmitAsync calls or until ctx is done. Call before shutting down providers.
func Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
