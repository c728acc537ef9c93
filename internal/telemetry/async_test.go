package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"event-admin-console/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.SessionEvent
	emitErr error
	delay   time.Duration
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.SessionEvent) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.SessionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.SessionEvent(nil), m.events...)
}

func drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

func TestEmitAsync_NilArguments(t *testing.T) {
	emitter := &mockEventEmitter{}
	EmitAsync(nil, context.Background(), domain.NewSessionEvent(domain.EventLogout, "test"))
	EmitAsync(emitter, context.Background(), nil)
	drain(t)
	if n := len(emitter.getEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	event := domain.NewSessionEvent(domain.EventLoginSuccess, "console").WithUser("user-1", "admin")

	EmitAsync(emitter, context.Background(), event)
	drain(t)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserID != "user-1" || events[0].EventType != domain.EventLoginSuccess {
		t.Errorf("event = %+v", events[0])
	}
}

func TestEmitAsync_SurvivesCancelledContext(t *testing.T) {
	emitter := &mockEventEmitter{delay: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	EmitAsync(emitter, ctx, domain.NewSessionEvent(domain.EventLogout, "console"))
	drain(t)

	if n := len(emitter.getEvents()); n != 1 {
		t.Errorf("expected 1 event despite cancelled caller context, got %d", n)
	}
}

func TestEmitAsync_ErrorIsSwallowed(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: errors.New("kafka down")}
	EmitAsync(emitter, context.Background(), domain.NewSessionEvent(domain.EventLogout, "console"))
	drain(t)
	if n := len(emitter.getEvents()); n != 1 {
		t.Errorf("expected 1 attempted event, got %d", n)
	}
}

func TestEmitAsync_Concurrent(t *testing.T) {
	emitter := &mockEventEmitter{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, context.Background(), domain.NewSessionEvent(domain.EventTokenRefreshed, "console"))
		}()
	}
	wg.Wait()
	drain(t)
	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}

func TestDrain_RespectsContext(t *testing.T) {
	emitter := &mockEventEmitter{delay: 500 * time.Millisecond}
	EmitAsync(emitter, context.Background(), domain.NewSessionEvent(domain.EventLogout, "console"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Drain = %v, want DeadlineExceeded", err)
	}
	drain(t)
}

func TestMulti(t *testing.T) {
	a, b := &mockEventEmitter{}, &mockEventEmitter{emitErr: errors.New("b failed")}
	m := Multi(a, nil, b)
	err := m.Emit(context.Background(), domain.NewSessionEvent(domain.EventLogout, "console"))
	if err == nil {
		t.Error("Multi should report b's error")
	}
	if len(a.getEvents()) != 1 || len(b.getEvents()) != 1 {
		t.Error("every emitter should receive the event")
	}
}
