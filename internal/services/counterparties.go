package services

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// CounterpartyService calls the /counterparties endpoints.
type CounterpartyService struct {
	api *apiclient.Client
}

// NewCounterpartyService creates a CounterpartyService.
func NewCounterpartyService(client *apiclient.Client) *CounterpartyService {
	return &CounterpartyService{api: client}
}

// List returns one page of counterparties.
func (s *CounterpartyService) List(ctx context.Context, f api.CounterpartyFilter) (*api.Page[api.Counterparty], error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid counterparty filter: %w", err)
	}
	var out api.Page[api.Counterparty]
	if err := s.api.Get(ctx, "/counterparties", &apiclient.RequestOptions{Params: f.Query()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one counterparty.
func (s *CounterpartyService) Get(ctx context.Context, id string) (*api.Counterparty, error) {
	var out api.Counterparty
	if err := s.api.Get(ctx, resourcePath("/counterparties", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a counterparty.
func (s *CounterpartyService) Create(ctx context.Context, req api.CounterpartyRequest) (*api.Counterparty, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid counterparty: %w", err)
	}
	var out api.Counterparty
	if err := s.api.Post(ctx, "/counterparties", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the set fields of a counterparty.
func (s *CounterpartyService) Update(ctx context.Context, id string, req api.CounterpartyRequest) (*api.Counterparty, error) {
	var out api.Counterparty
	if err := s.api.Patch(ctx, resourcePath("/counterparties", id), req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a counterparty.
func (s *CounterpartyService) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, resourcePath("/counterparties", id), nil, nil)
}

// Documents lists the documents that reference a counterparty.
func (s *CounterpartyService) Documents(ctx context.Context, id string) (*api.CounterpartyDocuments, error) {
	var out api.CounterpartyDocuments
	if err := s.api.Get(ctx, resourcePath("/counterparties", id, "documents"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
