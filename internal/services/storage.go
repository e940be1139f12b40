package services

import (
	"context"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// StorageService calls the /storage endpoints.
type StorageService struct {
	api *apiclient.Client
}

// NewStorageService creates a StorageService.
func NewStorageService(client *apiclient.Client) *StorageService {
	return &StorageService{api: client}
}

// Info returns quota and bucket details.
func (s *StorageService) Info(ctx context.Context) (*api.StorageInfo, error) {
	var out api.StorageInfo
	if err := s.api.Get(ctx, "/storage/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns usage per document type.
func (s *StorageService) Stats(ctx context.Context) (*api.StorageStats, error) {
	var out api.StorageStats
	if err := s.api.Get(ctx, "/storage/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
