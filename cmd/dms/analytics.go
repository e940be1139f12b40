package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/sirius-dms/dms-client/internal/services"
	"github.com/spf13/cobra"
)

func newAnalyticsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show document analytics",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			return showDashboard(ctx, a, jsonOut)
		}),
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Headline metrics",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			return showDashboard(ctx, a, jsonOut)
		}),
	}

	var period string
	workflow := &cobra.Command{
		Use:   "workflow",
		Short: "Incoming and processed documents over a period",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			points, err := a.svc.Analytics.Workflow(ctx, period)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, points)
			}
			fmt.Fprintf(a.out, "%-10s  %8s  %9s\n", "Period", "Incoming", "Processed")
			for _, p := range points {
				fmt.Fprintf(a.out, "%-10s  %8d  %9d\n", p.Name, p.Incoming, p.Processed)
			}
			return nil
		}),
	}
	workflow.Flags().StringVar(&period, "period", services.PeriodWeek, "week, month or year")

	types := &cobra.Command{
		Use:   "types",
		Short: "Document type distribution",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			shares, err := a.svc.Analytics.Types(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, shares)
			}
			for _, s := range shares {
				fmt.Fprintf(a.out, "%-20s  %5d\n", s.Name, s.Value)
			}
			return nil
		}),
	}

	var days int
	flow := &cobra.Command{
		Use:   "flow",
		Short: "Documents per day",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			points, err := a.svc.Analytics.DocumentsFlow(ctx, days)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, points)
			}
			for _, p := range points {
				fmt.Fprintf(a.out, "%-8s  %4d  %s\n", p.Name, p.Docs, strings.Repeat("#", min(p.Docs, 60)))
			}
			return nil
		}),
	}
	flow.Flags().IntVar(&days, "days", 30, "Number of days (1-365)")

	cmd.AddCommand(dashboard, workflow, types, flow)
	return cmd
}

func showDashboard(ctx context.Context, a *app, jsonOut bool) error {
	q := async.NewQuery(func(ctx context.Context, _ struct{}) (*api.DashboardMetrics, error) {
		return a.svc.Analytics.Dashboard(ctx)
	}, async.QueryOptions[*api.DashboardMetrics]{Logger: a.logger})
	m, err := q.Execute(ctx, struct{}{})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(a.out, m)
	}
	fmt.Fprintf(a.out, "Documents:           %d\n", m.TotalDocuments)
	fmt.Fprintf(a.out, "High priority:       %d\n", m.HighPriorityCount)
	fmt.Fprintf(a.out, "Avg processing time: %.1f min\n", m.AvgProcessingTimeMinutes)
	fmt.Fprintf(a.out, "Processed pages:     %d\n", m.ProcessedPages)
	fmt.Fprintf(a.out, "Storage:             %.2f / %.2f GB\n", m.StorageUsedGB, m.StorageTotalGB)
	return nil
}
