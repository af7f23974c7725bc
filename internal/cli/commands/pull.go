package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/querydeck/querydeck/internal/dashboard"
	"github.com/spf13/cobra"
)

// NewPullCommand creates the pull command.
func NewPullCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch and normalize the dashboard snapshot",
		Long: `Fetch the authoritative snapshot for the configured user, run it
through normalization, and print the resulting folders and items.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ConfigFrom(cmd)
			if err != nil {
				return err
			}
			client := NewClient(cfg)

			payload, err := client.FetchDashboard(cmd.Context(), cfg.User)
			if err != nil {
				return fmt.Errorf("fetch dashboard: %w", err)
			}
			rawItems := payload.Queries
			if payload.Detail != "" {
				rawItems, _ = dashboard.StripLegacyDemo(rawItems)
			}
			res := dashboard.Normalize(rawItems, payload.Folders)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Snapshot)
			}
			renderSnapshot(cmd, res.Snapshot, res.Changed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, snap *dashboard.Snapshot, changed bool) {
	out := cmd.OutOrStdout()

	ft := table.NewWriter()
	ft.SetOutputMirror(out)
	ft.AppendHeader(table.Row{"Folder", "Tone", "Items"})
	counts := map[string]int{}
	for i := range snap.Items {
		counts[snap.Items[i].FolderID]++
	}
	for _, f := range snap.Folders {
		ft.AppendRow(table.Row{f.Name, f.Tone, counts[f.ID]})
	}
	ft.Render()

	it := table.NewWriter()
	it.SetOutputMirror(out)
	it.AppendHeader(table.Row{"Title", "Folder", "Chart", "Pinned", "Rows"})
	for i := range snap.Items {
		item := &snap.Items[i]
		rows := "-"
		if item.Preview != nil {
			rows = fmt.Sprintf("%d", item.Preview.RowCount)
		}
		pinned := ""
		if item.IsPinned {
			pinned = "yes"
		}
		it.AppendRow(table.Row{item.Title, item.Category, string(item.ChartType), pinned, rows})
	}
	it.Render()

	if changed {
		fmt.Fprintln(out, "note: normalization repaired drift in the served payload")
	}
}
