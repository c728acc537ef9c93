package domain

import (
	"errors"
	"fmt"
)

// DefaultLoginMessage is shown when the backend gives no reason for a failed login.
const DefaultLoginMessage = "Login failed"

// ErrNoSession is returned when no usable session is stored.
var ErrNoSession = errors.New("no session")

// DecodeError reports an access token that is not a well-formed signed token.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return "decode token"
	}
	return "decode token: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LoginError reports a rejected login or a malformed success envelope.
// Message is the backend text when available, else DefaultLoginMessage.
type LoginError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *LoginError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = DefaultLoginMessage
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("login: status=%d: %s", e.StatusCode, msg)
	}
	return "login: " + msg
}

func (e *LoginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RefreshError reports a failed refresh call. It is never shown to the user; it triggers termination.
type RefreshError struct {
	StatusCode int
	Err        error
}

func (e *RefreshError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("refresh: status=%d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("refresh: %v", e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("refresh: status=%d", e.StatusCode)
	default:
		return "refresh failed"
	}
}

func (e *RefreshError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LogoutError reports a failed backend logout call. Local cleanup has already happened.
type LogoutError struct {
	Err error
}

func (e *LogoutError) Error() string {
	if e == nil || e.Err == nil {
		return "logout"
	}
	return "logout: " + e.Err.Error()
}

func (e *LogoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
