package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"event-admin-console/internal/telemetry"
	"event-admin-console/internal/telemetry/domain"
)

const loggerName = "event-admin-console.session"

// NewEventEmitter returns an EventEmitter that sends session events as OTel log records via provider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(loggerName))
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger.
func NewEventEmitterWithLogger(logger otellog.Logger) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.SessionEvent) error { return nil }

type otelEmitter struct {
	logger otellog.Logger
}

// Emit converts the event to an OTel log record: the event type is the body, the rest are attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.SessionEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetObservedTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(event.EventType))
	rec.SetSeverity(severityFor(event.EventType))

	add := func(key, value string) {
		if value != "" {
			rec.AddAttributes(otellog.String(key, value))
		}
	}
	add("event_id", event.ID)
	add("event_type", event.EventType)
	add("source", event.Source)
	add("user_id", event.UserID)
	add("role_id", event.RoleID)
	add("message", event.Message)

	e.logger.Emit(ctx, rec)
	return nil
}

func severityFor(eventType string) otellog.Severity {
	switch eventType {
	case domain.EventLoginFailure, domain.EventSessionTerminated:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityInfo
	}
}
