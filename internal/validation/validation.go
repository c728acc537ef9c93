// Package validation holds the field checks shared by the resource domain types.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Accepted date layouts, most specific first. The console forms send datetime-local values.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// Error is a validation failure on one field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Field returns the field name of a validation error, or "".
func Field(err error) string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Field
	}
	return ""
}

// Required fails with "<label> is required" when value is blank.
func Required(field, label, value string) error {
	if strings.TrimSpace(value) == "" {
		return &Error{Field: field, Message: label + " is required"}
	}
	return nil
}

// Positive fails with "<label> is required" when value is not positive.
func Positive(field, label string, value int) error {
	if value <= 0 {
		return &Error{Field: field, Message: label + " is required"}
	}
	return nil
}

// Email checks presence and format.
func Email(field, value string) error {
	if err := Required(field, "Email", value); err != nil {
		return err
	}
	if !emailPattern.MatchString(strings.TrimSpace(value)) {
		return &Error{Field: field, Message: "Invalid email address"}
	}
	return nil
}

// ParseDate parses value with the accepted layouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date " + value)
}

// DateRange checks both dates are present and parseable and that end is not before start.
func DateRange(startField, start, endField, end string) error {
	if err := Required(startField, "Start date", start); err != nil {
		return err
	}
	if err := Required(endField, "End date", end); err != nil {
		return err
	}
	s, err := ParseDate(start)
	if err != nil {
		return &Error{Field: startField, Message: "Start date is invalid"}
	}
	e, err := ParseDate(end)
	if err != nil {
		return &Error{Field: endField, Message: "End date is invalid"}
	}
	if e.Before(s) {
		return &Error{Field: endField, Message: "End date must be after start date"}
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
