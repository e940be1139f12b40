package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change account settings",
	}

	var jsonOut bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show preferences and profile",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			s, err := a.svc.Settings.Get(ctx)
			if err != nil {
				return err
			}
			profile, err := a.svc.Settings.Profile(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, map[string]any{"settings": s, "profile": profile})
			}
			fmt.Fprintf(a.out, "Name: %s\nEmail: %s\n", profile.FullName(), profile.Email)
			fmt.Fprintf(a.out, "Theme: %s\nCompact list: %t\nNotifications: %t\nAuto-archive after: %d days\nLifecycle policy: %t\n",
				s.Theme, s.CompactList, s.NotificationsEnabled, s.AutoArchiveDays, s.LifecyclePolicyEnabled)
			return nil
		}),
	}
	show.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	cmd.AddCommand(show)
	return cmd
}

func newStorageCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Show storage usage",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			info, err := a.svc.Storage.Info(ctx)
			if err != nil {
				return err
			}
			stats, err := a.svc.Storage.Stats(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(a.out, map[string]any{"info": info, "stats": stats})
			}
			fmt.Fprintf(a.out, "Bucket: %s (%s)\nUsed: %.2f of %.2f GB (%.1f%%)\n",
				info.BucketName, info.Region, info.UsedGB, info.TotalGB, info.UsagePercentage)
			for _, t := range stats.ByType {
				fmt.Fprintf(a.out, "  %-20s  %8.2f GB  %5d files\n", t.Type, t.SizeGB, t.Count)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
