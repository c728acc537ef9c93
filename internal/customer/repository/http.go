package repository

import (
	"context"
	"net/http"

	"event-admin-console/internal/apiclient"
	"event-admin-console/internal/customer/domain"
)

const (
	createPath = "/api/Customer/createCustomer"
	listPath   = "/api/Customer/getAllCustomer"
)

// HTTPRepository implements Repository over the API client.
type HTTPRepository struct {
	client *apiclient.Client
}

var _ Repository = (*HTTPRepository)(nil)

// NewHTTPRepository returns a repository using client.
func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

// Create validates req and creates a customer.
func (r *HTTPRepository) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	var env apiclient.Envelope[domain.Customer]
	if err := r.client.DoJSON(ctx, apiclient.Request{Method: http.MethodPost, Path: createPath, Body: req}, &env); err != nil {
		return nil, "", err
	}
	return &env.Result, env.Message, nil
}

// List returns all customers with their events.
func (r *HTTPRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return apiclient.Call[[]domain.Customer](ctx, r.client, apiclient.Request{Method: http.MethodGet, Path: listPath})
}
