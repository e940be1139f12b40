package services

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// DocumentService calls the /documents endpoints.
type DocumentService struct {
	api *apiclient.Client
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(client *apiclient.Client) *DocumentService {
	return &DocumentService{api: client}
}

// List returns one page of documents matching f.
func (s *DocumentService) List(ctx context.Context, f api.DocumentFilter) (*api.Page[api.Document], error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document filter: %w", err)
	}
	var out api.Page[api.Document]
	if err := s.api.Get(ctx, "/documents", &apiclient.RequestOptions{Params: f.Query()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns a single document with its history.
func (s *DocumentService) Get(ctx context.Context, id string) (*api.Document, error) {
	var out api.Document
	if err := s.api.Get(ctx, resourcePath("/documents", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores document metadata without a file.
func (s *DocumentService) Create(ctx context.Context, req api.CreateDocumentRequest) (*api.Document, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("document title is required")
	}
	var out api.Document
	if err := s.api.Post(ctx, "/documents", req, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes the non-nil fields of req.
func (s *DocumentService) Update(ctx context.Context, id string, req api.UpdateDocumentRequest) error {
	return s.api.Patch(ctx, resourcePath("/documents", id), req, nil, nil)
}

// SetFavorite marks or unmarks a document as favorite.
func (s *DocumentService) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.Update(ctx, id, api.UpdateDocumentRequest{IsFavorite: &favorite})
}

// SetArchived archives or unarchives a single document.
func (s *DocumentService) SetArchived(ctx context.Context, id string, archived bool) error {
	return s.Update(ctx, id, api.UpdateDocumentRequest{IsArchived: &archived})
}

// Delete moves a document to the trash, or removes it for good when permanent is set.
func (s *DocumentService) Delete(ctx context.Context, id string, permanent bool) error {
	opts := &apiclient.RequestOptions{Params: apiclient.Params{"permanent": nil}}
	if permanent {
		opts.Params["permanent"] = true
	}
	return s.api.Delete(ctx, resourcePath("/documents", id), opts, nil)
}

// Restore brings a document back from the trash.
func (s *DocumentService) Restore(ctx context.Context, id string) error {
	return s.api.Post(ctx, resourcePath("/documents", id, "restore"), nil, nil, nil)
}

// Upload sends a file with optional metadata.
func (s *DocumentService) Upload(ctx context.Context, file apiclient.UploadFile, meta api.UploadMetadata) (*api.Document, error) {
	var out api.Document
	if err := s.api.Upload(ctx, "/documents/upload", file, meta.Fields(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches the stored file of a document.
func (s *DocumentService) Download(ctx context.Context, id string) (*apiclient.Blob, error) {
	return s.api.Download(ctx, resourcePath("/documents", id, "download"), nil)
}

// BulkDelete moves several documents to the trash.
func (s *DocumentService) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.api.Post(ctx, "/documents/bulk-delete", ids, nil, nil)
}

// BulkArchive archives several documents.
func (s *DocumentService) BulkArchive(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.api.Post(ctx, "/documents/bulk-archive", ids, nil, nil)
}

// Search runs a metadata search over titles.
func (s *DocumentService) Search(ctx context.Context, query string, page, limit int) (*api.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	params := apiclient.Params{"query": query, "page": nil, "limit": nil}
	if page > 0 {
		params["page"] = page
	}
	if limit > 0 {
		params["limit"] = limit
	}
	var out api.SearchResult
	if err := s.api.Get(ctx, "/documents/search", &apiclient.RequestOptions{Params: params}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
