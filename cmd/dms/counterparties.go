package main

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/spf13/cobra"
)

func newCounterpartiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "counterparties",
		Aliases: []string{"cp"},
		Short:   "Work with counterparties",
	}
	cmd.AddCommand(newCounterpartiesListCmd(), newCounterpartiesGetCmd())
	return cmd
}

func newCounterpartiesListCmd() *cobra.Command {
	var (
		filter   api.CounterpartyFilter
		minTrust int
		all      bool
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List counterparties",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if filter.Limit == 0 {
				filter.Limit = a.cfg.PageSize
			}
			if minTrust >= 0 {
				filter.MinTrustScore = &minTrust
			}

			list := async.NewPaginated(func(ctx context.Context, f api.CounterpartyFilter) (async.PageResult[api.Counterparty], error) {
				page, err := a.svc.Counterparties.List(ctx, f)
				if err != nil {
					return async.PageResult[api.Counterparty]{}, err
				}
				return async.PageResult[api.Counterparty]{Items: page.Items, Total: page.Total, Pages: page.Pages}, nil
			}, filter, async.PaginatedOptions{Logger: a.logger})

			if err := list.Load(ctx); err != nil {
				return err
			}
			for all && list.HasMore() {
				if err := list.LoadMore(ctx); err != nil {
					return err
				}
			}

			items := list.Items()
			if jsonOut {
				return printJSON(a.out, items)
			}
			fmt.Fprintf(a.out, "%-36s  %-30s  %-12s  %5s  %5s\n", "ID", "Name", "INN", "Docs", "Trust")
			for _, c := range items {
				fmt.Fprintf(a.out, "%-36s  %-30s  %-12s  %5d  %5d\n", c.ID, truncate(c.Name, 30), c.INN, c.DocCount, c.TrustScore)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page to fetch")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size (default DMS_PAGE_SIZE)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search by name or INN")
	cmd.Flags().IntVar(&minTrust, "min-trust", -1, "Minimum trust score (0-100)")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCounterpartiesGetCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "get <counterparty-id>",
		Short: "Show a counterparty and its documents",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			cp, err := a.svc.Counterparties.Get(ctx, args[0])
			if err != nil {
				return err
			}
			docs, err := a.svc.Counterparties.Documents(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, map[string]any{"counterparty": cp, "documents": docs})
			}
			fmt.Fprintf(a.out, "ID: %s\nName: %s\nINN: %s\nKPP: %s\nEmail: %s\nPhone: %s\nTrust score: %d\nActive contracts: %d\n",
				cp.ID, cp.Name, cp.INN, deref(cp.KPP), deref(cp.Email), deref(cp.Phone), cp.TrustScore, cp.ActiveContracts)
			fmt.Fprintf(a.out, "Documents (%d):\n", docs.Total)
			for _, d := range docs.Items {
				fmt.Fprintf(a.out, "  %-36s  %-40s  %-10s\n", d.ID, truncate(d.Title, 40), d.Status)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
