package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"event-admin-console/internal/apiclient"
	"event-admin-console/internal/event/domain"
)

const (
	eventsPath     = "/api/Events"
	searchPath     = "/api/Events/search"
	createFullPath = "/api/Event/createEvent"
)

// ErrEmptyID is returned when an id argument is blank.
var ErrEmptyID = errors.New("event id is required")

// HTTPRepository implements Repository over the API client.
type HTTPRepository struct {
	client *apiclient.Client
}

var _ Repository = (*HTTPRepository)(nil)

// NewHTTPRepository returns a repository using client.
func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func itemPath(id string) string {
	return eventsPath + "/" + url.PathEscape(id)
}

// List returns all events.
func (r *HTTPRepository) List(ctx context.Context) ([]domain.Event, error) {
	return apiclient.Call[[]domain.Event](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: eventsPath})
}

// Get returns one event.
func (r *HTTPRepository) Get(ctx context.Context, id string) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	ev, err := apiclient.Call[domain.Event](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: itemPath(id)})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Create validates req and creates an event.
func (r *HTTPRepository) Create(ctx context.Context, req domain.CreateEventRequest) (*domain.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ev, err := apiclient.Call[domain.Event](ctx, r.client, apiclient.Request{Method: http.MethodPost, Path: eventsPath, Body: req})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// CreateFull validates req and creates the event with its venue and administrator.
func (r *HTTPRepository) CreateFull(ctx context.Context, req domain.CreateFullEventRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	var env apiclient.Envelope[json.RawMessage]
	if err := r.client.DoJSON(ctx, apiclient.Request{Method: http.MethodPost, Path: createFullPath, Body: req}, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// Update applies a partial update.
func (r *HTTPRepository) Update(ctx context.Context, id string, req domain.UpdateEventRequest) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ev, err := apiclient.Call[domain.Event](ctx, r.client, apiclient.Request{Method: http.MethodPut, Path: itemPath(id), Body: req})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Delete removes an event.
func (r *HTTPRepository) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	return r.client.DoJSON(ctx, apiclient.Request{Method: http.MethodDelete, Path: itemPath(id)}, nil)
}

// Search filters events by free text and status. Empty filters are omitted from the query.
func (r *HTTPRepository) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	params := url.Values{}
	if text := strings.TrimSpace(q.Text); text != "" {
		params.Set("search", text)
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	return apiclient.Call[[]domain.Event](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: searchPath, Query: params})
}
