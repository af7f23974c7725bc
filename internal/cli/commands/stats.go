package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/querydeck/querydeck/internal/dashboard"
	"github.com/querydeck/querydeck/internal/stats"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <item-id>",
		Short: "Show per-column statistics for one saved query",
		Long: `Fetch an item's bundle and print per-column descriptive statistics,
computing them from cached preview rows when the server supplied none.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ConfigFrom(cmd)
			if err != nil {
				return err
			}
			client := NewClient(cfg)
			id := args[0]

			payload, err := client.FetchDashboard(cmd.Context(), cfg.User)
			if err != nil {
				return fmt.Errorf("fetch dashboard: %w", err)
			}
			res := dashboard.Normalize(payload.Queries, payload.Folders)
			item := res.Snapshot.ItemByID(id)
			if item == nil {
				return fmt.Errorf("unknown item: %s", id)
			}

			// Hydrate the heavy payload; stale local data is fine if
			// the bundle fetch fails.
			if bundles, err := client.FetchBundles(cmd.Context(), cfg.User, []string{id}); err == nil {
				if raw, ok := bundles[id]; ok {
					dashboard.MergeBundle(item, raw)
				}
			}

			rows := stats.Compute(item)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no preview rows to profile")
				return nil
			}
			renderStats(cmd, item.Title, rows)
			return nil
		},
	}
}

func renderStats(cmd *cobra.Command, title string, rows []dashboard.StatRow) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Column", "N", "Missing", "Null", "Min", "Q1", "Median", "Q3", "Max"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Column, r.Count, r.MissingCount, r.NullCount,
			num(r.Min), num(r.Q1), num(r.Median), num(r.Q3), num(r.Max),
		})
	}
	t.Render()
}

func num(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
