package mockapi

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"event-admin-console/internal/catalog"
	customerdomain "event-admin-console/internal/customer/domain"
	eventdomain "event-admin-console/internal/event/domain"
)

var ErrEventNotFound = errors.New("event not found")

// Resources is the in-memory event, customer and catalog state.
type Resources struct {
	mu           sync.RWMutex
	events       map[string]eventdomain.Event
	customers    []customerdomain.Customer
	nextCustomer int
	themes       []catalog.ThemeSelection
	fonts        []catalog.FontStyle
	nowF         func() time.Time
}

// NewResources returns the seeded resource state.
func NewResources() *Resources {
	r := &Resources{
		events:       make(map[string]eventdomain.Event),
		nextCustomer: 1,
		nowF:         utcNow,
	}
	created := r.stamp()
	r.themes = []catalog.ThemeSelection{
		{ID: 1, Label: "Ocean", Color: "#0E7490", IsActive: true, CreatedBy: "system", CreatedDate: created},
		{ID: 2, Label: "Sunset", Color: "#EA580C", IsActive: true, CreatedBy: "system", CreatedDate: created},
		{ID: 3, Label: "Legacy", Color: "#6B7280", IsActive: false, CreatedBy: "system", CreatedDate: created},
	}
	r.fonts = []catalog.FontStyle{
		{ID: 1, Label: "Inter", FontFamily: "Inter, sans-serif", ClassName: "font-inter", IsActive: true, CreatedBy: 1, CreatedDate: created},
		{ID: 2, Label: "Merriweather", FontFamily: "Merriweather, serif", ClassName: "font-merriweather", IsActive: true, CreatedBy: 1, CreatedDate: created},
		{ID: 3, Label: "Comic", FontFamily: "Comic Sans MS, cursive", ClassName: "font-comic", IsActive: false, CreatedBy: 1, CreatedDate: created},
	}
	return r
}

func (r *Resources) stamp() string {
	return r.nowF().Format(time.RFC3339)
}

// Events returns all events ordered by start date.
func (r *Resources) Events() []eventdomain.Event {
	r.mu.RLock()
	out := make([]eventdomain.Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b eventdomain.Event) int {
		if c := strings.Compare(a.StartDate, b.StartDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Event returns one event.
func (r *Resources) Event(id string) (eventdomain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[id]
	if !ok {
		return eventdomain.Event{}, ErrEventNotFound
	}
	return ev, nil
}

// CreateEvent validates req and stores a new active event.
func (r *Resources) CreateEvent(req eventdomain.CreateEventRequest) (eventdomain.Event, error) {
	if err := req.Validate(); err != nil {
		return eventdomain.Event{}, err
	}
	now := r.stamp()
	ev := eventdomain.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      eventdomain.EventStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.mu.Lock()
	r.events[ev.ID] = ev
	r.mu.Unlock()
	return ev, nil
}

// CreateFullEvent validates req and stores it as an event.
func (r *Resources) CreateFullEvent(req eventdomain.CreateFullEventRequest) (eventdomain.Event, error) {
	if err := req.Validate(); err != nil {
		return eventdomain.Event{}, err
	}
	return r.CreateEvent(eventdomain.CreateEventRequest{
		Title:       req.EventDetails.EventName,
		Description: req.EventDetails.Description,
		StartDate:   req.EventDetails.StartDate,
		EndDate:     req.EventDetails.EndDate,
		Location:    req.Location.VenueName,
	})
}

// UpdateEvent applies a validated partial update.
func (r *Resources) UpdateEvent(id string, req eventdomain.UpdateEventRequest) (eventdomain.Event, error) {
	if err := req.Validate(); err != nil {
		return eventdomain.Event{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[id]
	if !ok {
		return eventdomain.Event{}, ErrEventNotFound
	}
	if req.Title != nil {
		ev.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		ev.Description = *req.Description
	}
	if req.StartDate != nil {
		ev.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		ev.EndDate = *req.EndDate
	}
	if req.Location != nil {
		ev.Location = *req.Location
	}
	if req.Capacity != nil {
		ev.Capacity = *req.Capacity
	}
	ev.UpdatedAt = r.stamp()
	r.events[id] = ev
	return ev, nil
}

// DeleteEvent removes an event.
func (r *Resources) DeleteEvent(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

// SearchEvents matches text against title, description and location (case-insensitive)
// and filters by status when set.
func (r *Resources) SearchEvents(q eventdomain.SearchQuery) []eventdomain.Event {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	return slices.DeleteFunc(r.Events(), func(ev eventdomain.Event) bool {
		if q.Status != "" && ev.Status != q.Status {
			return true
		}
		if text == "" {
			return false
		}
		hay := strings.ToLower(ev.Title + "\n" + ev.Description + "\n" + ev.Location)
		return !strings.Contains(hay, text)
	})
}

// CreateCustomer validates req and stores a customer.
func (r *Resources) CreateCustomer(req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	if err := req.Validate(); err != nil {
		return customerdomain.Customer{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := customerdomain.Customer{
		ID:            r.nextCustomer,
		CompanyName:   strings.TrimSpace(req.CompanyName),
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		StateProvince: req.StateProvince,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		EmailAddress:  normalizeEmail(req.EmailAddress),
		PhoneNumber:   req.PhoneNumber,
		CreatedBy:     1,
		CreatedDate:   r.stamp(),
		IsActive:      true,
		Events:        []customerdomain.CustomerEvent{},
	}
	r.nextCustomer++
	r.customers = append(r.customers, c)
	return c, nil
}

// Customers returns all customers in creation order.
func (r *Resources) Customers() []customerdomain.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.customers)
}

// Themes returns every theme selection.
func (r *Resources) Themes() []catalog.ThemeSelection {
	return slices.Clone(r.themes)
}

// Fonts returns every font style.
func (r *Resources) Fonts() []catalog.FontStyle {
	return slices.Clone(r.fonts)
}

// EventCounts returns the number of events per status and in total.
func (r *Resources) EventCounts() (total int, byStatus map[eventdomain.EventStatus]int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byStatus = make(map[eventdomain.EventStatus]int)
	for _, ev := range r.events {
		byStatus[ev.Status]++
	}
	return len(r.events), byStatus
}
