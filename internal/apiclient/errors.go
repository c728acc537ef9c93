package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotInitialized is returned when a nil Client is used.
var ErrNotInitialized = errors.New("api client is not initialized")

// ErrMissingTokens is returned when a login or refresh envelope lacks the token pair.
var ErrMissingTokens = errors.New("response is missing token pair")

// APIError is a non-2xx response or an envelope with isError set.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.StatusCode > 0 && msg != "":
		return fmt.Sprintf("%s: status=%d: %s", e.Op, e.StatusCode, msg)
	case msg != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the user-facing message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// responseMessage picks the message to show for resp:
//  1. responseException (string, or object exceptionMessage/message)
//  2. envelope message
//  3. the raw body when it is not JSON
//  4. http.StatusText
func responseMessage(resp *Response) string {
	body := strings.TrimSpace(string(resp.Body))
	var head envelopeHead
	if body != "" && json.Unmarshal(resp.Body, &head) == nil {
		if m := exceptionMessage(head.ResponseException); m != "" {
			return m
		}
		if m := strings.TrimSpace(head.Message); m != "" {
			return m
		}
	} else if body != "" && !json.Valid(resp.Body) {
		if len(body) > 512 {
			body = body[:512]
		}
		return body
	}
	return http.StatusText(resp.StatusCode)
}

func newAPIError(op string, resp *Response) *APIError {
	return &APIError{Op: op, StatusCode: resp.StatusCode, Message: responseMessage(resp)}
}
