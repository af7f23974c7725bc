package session

import "github.com/querydeck/querydeck/internal/dashboard"

// demoSnapshot builds the sample dashboard shown when a user has
// nothing saved or the server cannot be reached on a cold start. It is
// display-only and must never be written to the cache or the server.
func demoSnapshot() *dashboard.Snapshot {
	folders := []dashboard.Folder{
		{ID: "demo-folder-starter", Name: "Getting started", Tone: dashboard.ToneAt(0)},
		{ID: "demo-folder-examples", Name: "Examples", Tone: dashboard.ToneAt(1)},
	}
	monthly := &dashboard.Preview{
		Columns: []string{"month", "orders", "revenue"},
		Rows: [][]any{
			{"Jan", 412.0, 9870.5},
			{"Feb", 389.0, 9321.0},
			{"Mar", 455.0, 11204.75},
			{"Apr", 472.0, 11890.25},
		},
		RowCount: 4,
	}
	byRegion := &dashboard.Preview{
		Columns: []string{"region", "quarter", "sales"},
		Rows: [][]any{
			{"North", "Q1", 1250.0},
			{"North", "Q2", 1410.0},
			{"South", "Q1", 980.0},
			{"South", "Q2", 1105.0},
			{"West", "Q1", 1322.0},
			{"West", "Q2", 1275.0},
		},
		RowCount: 6,
	}
	channels := &dashboard.Preview{
		Columns: []string{"channel", "signups"},
		Rows: [][]any{
			{"Organic", 534.0},
			{"Paid", 221.0},
			{"Referral", 187.0},
		},
		RowCount: 3,
	}
	items := []dashboard.Item{
		{
			ID:           "demo-monthly-orders",
			Title:        "Monthly orders and revenue",
			Description:  "Order volume and revenue by month for the current year.",
			Text:         "SELECT month, COUNT(*) AS orders, SUM(total) AS revenue FROM orders GROUP BY month ORDER BY month",
			LastRunLabel: "Sample data",
			FolderID:     folders[0].ID,
			Category:     folders[0].Name,
			Preview:      monthly,
			Metrics:      dashboard.DefaultMetrics(monthly),
			ChartType:    dashboard.ChartLine,
		},
		{
			ID:           "demo-sales-by-region",
			Title:        "Stacked sales by region",
			Description:  "Quarterly sales stacked per region.",
			Text:         "SELECT region, quarter, SUM(amount) AS sales FROM sales GROUP BY region, quarter",
			LastRunLabel: "Sample data",
			IsPinned:     true,
			FolderID:     folders[1].ID,
			Category:     folders[1].Name,
			Preview:      byRegion,
			Metrics:      dashboard.DefaultMetrics(byRegion),
			ChartType:    dashboard.ChartBar,
		},
		{
			ID:           "demo-signup-channels",
			Title:        "Signups by channel",
			Description:  "Share of new signups per acquisition channel.",
			Text:         "SELECT channel, COUNT(*) AS signups FROM signups GROUP BY channel",
			LastRunLabel: "Sample data",
			FolderID:     folders[1].ID,
			Category:     folders[1].Name,
			Preview:      channels,
			Metrics:      dashboard.DefaultMetrics(channels),
			ChartType:    dashboard.ChartPie,
		},
	}
	return &dashboard.Snapshot{Items: items, Folders: folders}
}
