// Package library composes the async primitives with the documents
// endpoints: a paginated document list, the document mutations and the
// multi-select set the bulk actions work on.
package library

import (
	"context"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/sirius-dms/dms-client/internal/services"
	"go.uber.org/zap"
)

// DocumentLister is the part of services.DocumentService the list needs.
type DocumentLister interface {
	List(ctx context.Context, f api.DocumentFilter) (*api.Page[api.Document], error)
}

// Documents is the paginated document list.
type Documents struct {
	*async.Paginated[api.Document, api.DocumentFilter]
}

// NewDocuments creates a list for filter. Call Load to fetch the first page.
func NewDocuments(svc DocumentLister, filter api.DocumentFilter, logger *zap.Logger) *Documents {
	fetch := func(ctx context.Context, f api.DocumentFilter) (async.PageResult[api.Document], error) {
		page, err := svc.List(ctx, f)
		if err != nil {
			return async.PageResult[api.Document]{}, err
		}
		pages := page.Pages
		if pages == 0 && page.Total > 0 {
			pages = api.PageCount(page.Total, page.Limit)
		}
		return async.PageResult[api.Document]{Items: page.Items, Total: page.Total, Pages: pages}, nil
	}
	return &Documents{
		Paginated: async.NewPaginated(fetch, filter, async.PaginatedOptions{Logger: logger}),
	}
}

var _ DocumentLister = (*services.DocumentService)(nil)
