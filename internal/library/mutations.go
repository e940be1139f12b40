package library

import (
	"context"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/services"
	"go.uber.org/zap"
)

// DocumentWriter is the part of services.DocumentService the mutations need.
type DocumentWriter interface {
	Create(ctx context.Context, req api.CreateDocumentRequest) (*api.Document, error)
	Update(ctx context.Context, id string, req api.UpdateDocumentRequest) error
	SetFavorite(ctx context.Context, id string, favorite bool) error
	Delete(ctx context.Context, id string, permanent bool) error
	Restore(ctx context.Context, id string) error
	Upload(ctx context.Context, file apiclient.UploadFile, meta api.UploadMetadata) (*api.Document, error)
	BulkDelete(ctx context.Context, ids []string) error
	BulkArchive(ctx context.Context, ids []string) error
}

var _ DocumentWriter = (*services.DocumentService)(nil)

// UpdateArgs identifies a document and the fields to change.
type UpdateArgs struct {
	ID      string
	Request api.UpdateDocumentRequest
}

// DeleteArgs identifies a document to delete.
type DeleteArgs struct {
	ID        string
	Permanent bool
}

// UploadArgs is a file with its metadata.
type UploadArgs struct {
	File     apiclient.UploadFile
	Metadata api.UploadMetadata
}

// FavoriteArgs sets the favorite flag of a document.
type FavoriteArgs struct {
	ID       string
	Favorite bool
}

// MutationsOptions configures Mutations.
type MutationsOptions struct {
	// Refresh runs after a successful bulk action, typically the list's Refresh.
	Refresh func(ctx context.Context) error
	// Selection is cleared after a successful bulk action.
	Selection *Selection
	// OnError receives every failed mutation.
	OnError func(error)
	Logger  *zap.Logger
}

// Mutations holds one mutation per document write.
type Mutations struct {
	Create         *async.Mutation[api.CreateDocumentRequest, *api.Document]
	Update         *async.Mutation[UpdateArgs, struct{}]
	Delete         *async.Mutation[DeleteArgs, struct{}]
	Restore        *async.Mutation[string, struct{}]
	Upload         *async.Mutation[UploadArgs, *api.Document]
	BulkDelete     *async.Mutation[[]string, struct{}]
	BulkArchive    *async.Mutation[[]string, struct{}]
	ToggleFavorite *async.Mutation[FavoriteArgs, struct{}]
}

// NewMutations wires the mutations to svc.
func NewMutations(svc DocumentWriter, opts MutationsOptions) *Mutations {
	logger := logging.OrNop(opts.Logger)

	onError := func(err error) {
		logger.Debug("document mutation failed", zap.Error(err))
		if opts.OnError != nil {
			opts.OnError(err)
		}
	}
	noResult := async.MutationOptions[struct{}]{OnError: onError}
	docResult := async.MutationOptions[*api.Document]{OnError: onError}

	bulk := func(name string, call func(context.Context, []string) error) func(context.Context, []string) (struct{}, error) {
		return func(ctx context.Context, ids []string) (struct{}, error) {
			if err := call(ctx, ids); err != nil {
				return struct{}{}, err
			}
			logger.Info("bulk action completed", zap.String("action", name), zap.Int("count", len(ids)))
			if opts.Refresh != nil {
				if err := opts.Refresh(ctx); err != nil {
					logger.Warn("refresh after bulk action failed", zap.String("action", name), zap.Error(err))
				}
			}
			if opts.Selection != nil {
				opts.Selection.Clear()
			}
			return struct{}{}, nil
		}
	}

	return &Mutations{
		Create: async.NewMutation(svc.Create, docResult),
		Update: async.NewMutation(func(ctx context.Context, a UpdateArgs) (struct{}, error) {
			return struct{}{}, svc.Update(ctx, a.ID, a.Request)
		}, noResult),
		Delete: async.NewMutation(func(ctx context.Context, a DeleteArgs) (struct{}, error) {
			return struct{}{}, svc.Delete(ctx, a.ID, a.Permanent)
		}, noResult),
		Restore: async.NewMutation(func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, svc.Restore(ctx, id)
		}, noResult),
		Upload: async.NewMutation(func(ctx context.Context, a UploadArgs) (*api.Document, error) {
			return svc.Upload(ctx, a.File, a.Metadata)
		}, docResult),
		BulkDelete:  async.NewMutation(bulk("delete", svc.BulkDelete), noResult),
		BulkArchive: async.NewMutation(bulk("archive", svc.BulkArchive), noResult),
		ToggleFavorite: async.NewMutation(func(ctx context.Context, a FavoriteArgs) (struct{}, error) {
			return struct{}{}, svc.SetFavorite(ctx, a.ID, a.Favorite)
		}, noResult),
	}
}
