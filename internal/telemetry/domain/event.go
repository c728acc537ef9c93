// Package domain defines the session telemetry event shared by emitters, the Kafka producer and the worker.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session event types.
const (
	EventLoginSuccess      = "login_success"
	EventLoginFailure      = "login_failure"
	EventLogout            = "logout"
	EventSessionRestored   = "session_restored"
	EventTokenRefreshed    = "token_refreshed"
	EventSessionTerminated = "session_terminated"
)

// SessionEvent records one session lifecycle transition. It never carries token material.
type SessionEvent struct {
	ID        string    `json:"id"`
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	UserID    string    `json:"userId,omitempty"`
	RoleID    string    `json:"roleId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSessionEvent returns an event stamped with a fresh id and the current UTC time.
func NewSessionEvent(eventType, source string) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// WithUser sets the user fields and returns e.
func (e *SessionEvent) WithUser(userID, roleID string) *SessionEvent {
	e.UserID = userID
	e.RoleID = roleID
	return e
}

// WithMessage sets the message and returns e.
func (e *SessionEvent) WithMessage(msg string) *SessionEvent {
	e.Message = msg
	return e
}
