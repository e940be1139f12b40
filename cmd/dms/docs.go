package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/library"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Work with documents",
	}
	cmd.AddCommand(
		newDocsListCmd(), newDocsGetCmd(), newDocsSearchCmd(),
		newDocsDeleteCmd(), newDocsRestoreCmd(), newDocsArchiveCmd(), newDocsFavoriteCmd(),
		newDocsUploadCmd(), newDocsDownloadCmd(),
	)
	return cmd
}

func newDocsListCmd() *cobra.Command {
	var (
		filter    api.DocumentFilter
		all       bool
		jsonOut   bool
		favorites bool
		archived  bool
		trash     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if filter.Limit == 0 {
				filter.Limit = a.cfg.PageSize
			}
			if favorites {
				filter.IsFavorite = &favorites
			}
			if archived {
				filter.IsArchived = &archived
			}
			if trash {
				filter.IsDeleted = &trash
			}

			list := library.NewDocuments(a.svc.Documents, filter, a.logger)
			if err := list.Load(ctx); err != nil {
				return err
			}
			for all && list.HasMore() {
				if err := list.LoadMore(ctx); err != nil {
					return err
				}
			}

			state := list.State()
			if jsonOut {
				return printJSON(a.out, state.Items)
			}
			fmt.Fprintf(a.out, "%-36s  %-40s  %-12s  %-10s  %-8s\n", "ID", "Title", "Type", "Status", "Priority")
			for _, d := range state.Items {
				fmt.Fprintf(a.out, "%-36s  %-40s  %-12s  %-10s  %-8s\n", d.ID, truncate(d.Title, 40), d.Type, d.Status, d.Priority)
			}
			fmt.Fprintf(a.out, "\nShowing %d of %d (page %d of %d)\n", len(state.Items), state.Total, state.CurrentPage, state.Pages)
			return nil
		}),
	}
	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page to fetch")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size (default DMS_PAGE_SIZE)")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filter.Type, "type", "", "Filter by document type")
	cmd.Flags().StringVar(&filter.Priority, "priority", "", "Filter by priority (low, medium, high)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search in titles")
	cmd.Flags().StringVar(&filter.CounterpartyID, "counterparty", "", "Filter by counterparty id")
	cmd.Flags().StringVar(&filter.DateFrom, "from", "", "Earliest document date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.DateTo, "to", "", "Latest document date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.SortBy, "sort", "", "Sort field")
	cmd.Flags().StringVar(&filter.SortOrder, "order", "", "Sort order (asc, desc)")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only favorites")
	cmd.Flags().BoolVar(&archived, "archived", false, "Only archived documents")
	cmd.Flags().BoolVar(&trash, "trash", false, "Only deleted documents")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDocsGetCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "get <document-id>",
		Short: "Show a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			d, err := a.svc.Documents.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, d)
			}
			fmt.Fprintf(a.out, "ID: %s\nTitle: %s\nType: %s\nStatus: %s\nPriority: %s\nCounterparty: %s\nDepartment: %s\nVersion: %d\nFavorite: %t\nArchived: %t\n",
				d.ID, d.Title, d.Type, d.Status, d.Priority, deref(d.Counterparty), deref(d.Department), d.Version, d.IsFavorite, d.IsArchived)
			if len(d.History) > 0 {
				fmt.Fprintln(a.out, "History:")
				for _, h := range d.History {
					fmt.Fprintf(a.out, "  %s  %-12s  %s\n", h.Date.Format("2006-01-02 15:04"), h.Action, h.User)
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDocsSearchCmd() *cobra.Command {
	var (
		page    int
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search documents by title",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			res, err := a.svc.Documents.Search(ctx, args[0], page, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, res)
			}
			fmt.Fprintln(a.out, res.Answer)
			for _, h := range res.Items {
				fmt.Fprintf(a.out, "%-36s  %-40s  %-12s\n", h.ID, truncate(h.Title, 40), h.Type)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page to fetch")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDocsDeleteCmd() *cobra.Command {
	var permanent bool
	cmd := &cobra.Command{
		Use:   "delete <document-id>...",
		Short: "Move documents to the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if len(args) > 1 {
				if permanent {
					return fmt.Errorf("--permanent takes a single document")
				}
				sel := library.NewSelection()
				sel.Add(args...)
				m, list := bulkMutations(a, sel)
				if _, err := m.BulkDelete.Mutate(ctx, sel.IDs()); err != nil {
					return err
				}
				a.notes.Success("Documents deleted", fmt.Sprintf("%d documents moved to the trash", len(args)))
				printLibrarySize(a, list)
				return nil
			}

			m := library.NewMutations(a.svc.Documents, library.MutationsOptions{Logger: a.logger})
			if _, err := m.Delete.Mutate(ctx, library.DeleteArgs{ID: args[0], Permanent: permanent}); err != nil {
				return err
			}
			if permanent {
				a.notes.Success("Document deleted", args[0])
			} else {
				a.notes.Success("Document moved to the trash", args[0])
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&permanent, "permanent", false, "Delete for good instead of moving to the trash")
	return cmd
}

func newDocsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <document-id>",
		Short: "Restore a document from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			m := library.NewMutations(a.svc.Documents, library.MutationsOptions{Logger: a.logger})
			if _, err := m.Restore.Mutate(ctx, args[0]); err != nil {
				return err
			}
			a.notes.Success("Document restored", args[0])
			return nil
		}),
	}
}

func newDocsArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <document-id>...",
		Short: "Archive documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			sel := library.NewSelection()
			sel.Add(args...)
			m, list := bulkMutations(a, sel)
			if _, err := m.BulkArchive.Mutate(ctx, sel.IDs()); err != nil {
				return err
			}
			a.notes.Success("Documents archived", fmt.Sprintf("%d archived", len(args)))
			printLibrarySize(a, list)
			return nil
		}),
	}
}

func newDocsFavoriteCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "favorite <document-id>",
		Short: "Mark a document as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			m := library.NewMutations(a.svc.Documents, library.MutationsOptions{Logger: a.logger})
			if _, err := m.ToggleFavorite.Mutate(ctx, library.FavoriteArgs{ID: args[0], Favorite: !off}); err != nil {
				return err
			}
			if off {
				a.notes.Info("Removed from favorites", args[0])
			} else {
				a.notes.Success("Added to favorites", args[0])
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&off, "off", false, "Remove from favorites instead")
	return cmd
}

func newDocsUploadCmd() *cobra.Command {
	var (
		meta    api.UploadMetadata
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file as a new document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			f, err := fsys.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			m := library.NewMutations(a.svc.Documents, library.MutationsOptions{Logger: a.logger})
			doc, err := m.Upload.Mutate(ctx, library.UploadArgs{
				File:     apiclient.UploadFile{Name: filepath.Base(args[0]), Reader: f},
				Metadata: meta,
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, doc)
			}
			a.notes.Success("Document uploaded", fmt.Sprintf("%s (%s)", doc.Title, doc.ID))
			return nil
		}),
	}
	cmd.Flags().StringVar(&meta.Title, "title", "", "Document title (default: file name)")
	cmd.Flags().StringVar(&meta.Type, "type", "", "Document type")
	cmd.Flags().StringVar(&meta.CounterpartyID, "counterparty", "", "Counterparty id")
	cmd.Flags().StringVar(&meta.Priority, "priority", "", "Priority (low, medium, high)")
	cmd.Flags().StringVar(&meta.Department, "department", "", "Department")
	cmd.Flags().StringSliceVar(&meta.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newDocsDownloadCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download the file of a document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			blob, err := a.svc.Documents.Download(ctx, args[0])
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = blob.Filename
			}
			if path == "" {
				path = args[0]
			}
			if err := afero.WriteFile(fsys, path, blob.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			a.notes.Success("Downloaded", fmt.Sprintf("%s (%d bytes)", path, len(blob.Data)))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: server file name)")
	return cmd
}

// bulkMutations returns mutations whose bulk actions reload the first page
// of the library into the returned list.
func bulkMutations(a *app, sel *library.Selection) (*library.Mutations, *library.Documents) {
	list := library.NewDocuments(a.svc.Documents, api.DocumentFilter{Page: 1, Limit: a.cfg.PageSize}, a.logger)
	m := library.NewMutations(a.svc.Documents, library.MutationsOptions{
		Refresh:   list.Refresh,
		Selection: sel,
		Logger:    a.logger,
	})
	return m, list
}

func printLibrarySize(a *app, list *library.Documents) {
	state := list.State()
	if state.Error != "" {
		return
	}
	fmt.Fprintf(a.out, "%d documents in the library\n", state.Total)
}
