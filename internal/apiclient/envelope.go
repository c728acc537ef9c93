package apiclient

import (
	"encoding/json"
	"strings"
)

// Envelope is the backend's uniform response wrapper.
type Envelope[T any] struct {
	Version           string          `json:"version"`
	StatusCode        int             `json:"statusCode"`
	Message           string          `json:"message"`
	IsError           bool            `json:"isError"`
	ResponseException json.RawMessage `json:"responseException,omitempty"`
	Result            T               `json:"result"`
}

// envelopeHead is the part of an envelope inspected before decoding the result.
type envelopeHead struct {
	StatusCode        int             `json:"statusCode"`
	Message           string          `json:"message"`
	IsError           bool            `json:"isError"`
	ResponseException json.RawMessage `json:"responseException"`
}

// Failed reports whether the envelope itself signals an error: isError set or a non-2xx statusCode.
// An absent statusCode (0) is not a failure.
func (h envelopeHead) Failed() bool {
	return h.IsError || (h.StatusCode != 0 && (h.StatusCode < 200 || h.StatusCode >= 300))
}

// TokenResult is the result of login and refresh.
type TokenResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// exceptionMessage extracts a message from responseException, which the backend sends either as
// a plain string or as an object with exceptionMessage or message.
func exceptionMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		ExceptionMessage string `json:"exceptionMessage"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if m := strings.TrimSpace(obj.ExceptionMessage); m != "" {
			return m
		}
		return strings.TrimSpace(obj.Message)
	}
	return ""
}
