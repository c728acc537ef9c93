package domain

import (
	"errors"

	"event-admin-console/internal/validation"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusInactive  EventStatus = "inactive"
	EventStatusCompleted EventStatus = "completed"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusActive, EventStatusInactive, EventStatusCompleted:
		return true
	}
	return false
}

// Event is an event as listed by the backend. Dates are kept as the backend formats them.
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	StartDate       string      `json:"startDate"`
	EndDate         string      `json:"endDate"`
	Location        string      `json:"location"`
	Capacity        int         `json:"capacity"`
	RegisteredCount int         `json:"registeredCount"`
	Status          EventStatus `json:"status"`
	CreatedAt       string      `json:"createdAt"`
	UpdatedAt       string      `json:"updatedAt"`
}

// CreateEventRequest is the flat create payload.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
}

// Validate returns the first validation failure.
func (r *CreateEventRequest) Validate() error {
	if r.Capacity < 0 {
		return &validation.Error{Field: "capacity", Message: "Capacity cannot be negative"}
	}
	return validation.First(
		validation.Required("title", "Title", r.Title),
		validation.DateRange("startDate", r.StartDate, "endDate", r.EndDate),
	)
}

// UpdateEventRequest is a partial update; nil fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Location    *string `json:"location,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
}

// ErrEmptyUpdate is returned when an update sets no fields.
var ErrEmptyUpdate = errors.New("update sets no fields")

// Validate checks the fields that are set.
func (r *UpdateEventRequest) Validate() error {
	if r.Title == nil && r.Description == nil && r.StartDate == nil && r.EndDate == nil && r.Location == nil && r.Capacity == nil {
		return ErrEmptyUpdate
	}
	if r.Title != nil {
		if err := validation.Required("title", "Title", *r.Title); err != nil {
			return err
		}
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return &validation.Error{Field: "capacity", Message: "Capacity cannot be negative"}
	}
	if r.StartDate != nil && r.EndDate != nil {
		return validation.DateRange("startDate", *r.StartDate, "endDate", *r.EndDate)
	}
	return nil
}

// EventDetails is the descriptive block of a full create.
type EventDetails struct {
	EventName   string `json:"eventName"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Location is the venue block of a full create.
type Location struct {
	VenueName     string  `json:"venueName"`
	AddressLine1  string  `json:"addressLine1"`
	AddressLine2  string  `json:"addressLine2"`
	CountryID     int     `json:"countryId"`
	StateID       int     `json:"stateId"`
	CityID        int     `json:"cityId"`
	PostalCode    int     `json:"postalCode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	GoogleMapLink string  `json:"googleMapLink"`
}

// Administrator is the event admin invited with a full create.
type Administrator struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CreateFullEventRequest is the structured create payload.
type CreateFullEventRequest struct {
	EventDetails          EventDetails  `json:"eventDetails"`
	Location              Location      `json:"location"`
	MarketingAbbreviation string        `json:"marketingAbbreviation"`
	ThemeSelectionID      int           `json:"themeSelectionId"`
	FontFamilyID          int           `json:"fontFamilyId"`
	EventURL              string        `json:"eventUrl"`
	LogoURL               string        `json:"logoUrl"`
	Payment               bool          `json:"payment"`
	EventCatalogID        int           `json:"eventCatalogId"`
	EventStatusID         int           `json:"eventStatusId"`
	PaymentDetailsID      int           `json:"paymentDetailsId"`
	EventModeID           int           `json:"eventModeId"`
	EventAdministrator    Administrator `json:"eventAdministrator"`
}

// Validate returns the first validation failure, in form order.
func (r *CreateFullEventRequest) Validate() error {
	return validation.First(
		validation.Required("eventDetails.eventName", "Event name", r.EventDetails.EventName),
		validation.DateRange("eventDetails.startDate", r.EventDetails.StartDate, "eventDetails.endDate", r.EventDetails.EndDate),
		validation.Required("location.venueName", "Venue name", r.Location.VenueName),
		validation.Required("location.addressLine1", "Address line 1", r.Location.AddressLine1),
		validation.Positive("location.countryId", "Country", r.Location.CountryID),
		validation.Positive("location.stateId", "State", r.Location.StateID),
		validation.Positive("location.cityId", "City", r.Location.CityID),
		validation.Positive("fontFamilyId", "Font", r.FontFamilyID),
		validation.Positive("themeSelectionId", "Theme", r.ThemeSelectionID),
		validation.Required("eventAdministrator.firstName", "First name", r.EventAdministrator.FirstName),
		validation.Required("eventAdministrator.lastName", "Last name", r.EventAdministrator.LastName),
		validation.Email("eventAdministrator.email", r.EventAdministrator.Email),
	)
}

// SearchQuery filters events. Both fields are optional.
type SearchQuery struct {
	Text   string
	Status EventStatus
}

// Validate rejects unknown statuses.
func (q SearchQuery) Validate() error {
	if q.Status != "" && !q.Status.Valid() {
		return &validation.Error{Field: "status", Message: "Unknown status " + string(q.Status)}
	}
	return nil
}
