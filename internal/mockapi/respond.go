package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	admindomain "event-admin-console/internal/adminuser/domain"
	eventdomain "event-admin-console/internal/event/domain"
	"event-admin-console/internal/validation"
)

const envelopeVersion = "1.0"

// envelope is the response wrapper every endpoint answers with.
type envelope struct {
	Version           string `json:"version"`
	StatusCode        int    `json:"statusCode"`
	Message           string `json:"message"`
	IsError           bool   `json:"isError"`
	ResponseException any    `json:"responseException,omitempty"`
	Result            any    `json:"result"`
}

type exception struct {
	ExceptionMessage string `json:"exceptionMessage"`
	Field            string `json:"field,omitempty"`
}

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

// decodeJSON reads a single JSON object. An empty body yields errEmptyBody.
func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeResult(w http.ResponseWriter, code int, message string, result any) {
	writeJSON(w, code, envelope{Version: envelopeVersion, StatusCode: code, Message: message, Result: result})
}

func writeError(w http.ResponseWriter, code int, message string, exc *exception) {
	env := envelope{Version: envelopeVersion, StatusCode: code, Message: message, IsError: true}
	if exc != nil {
		env.ResponseException = exc
	}
	writeJSON(w, code, env)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "Invalid request body", &exception{ExceptionMessage: err.Error()})
}

// writeServiceError maps state and validation errors onto envelope statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message, &exception{ExceptionMessage: verr.Message, Field: verr.Field})
	case errors.Is(err, eventdomain.ErrEmptyUpdate), errors.Is(err, admindomain.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, "Nothing to update", nil)
	case errors.Is(err, ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "Unknown role", nil)
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrAccountNotFound):
		writeError(w, http.StatusNotFound, capitalize(err.Error()), nil)
	case errors.Is(err, ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered", nil)
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials", nil)
	case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrRefreshTokenReuse):
		writeError(w, http.StatusUnauthorized, "Invalid refresh token", &exception{ExceptionMessage: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func extractBearerToken(authHeader string) string {
	parts := strings.Fields(strings.TrimSpace(authHeader))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func statusMessage(action, noun string) string {
	return fmt.Sprintf("%s %s successfully", noun, action)
}
