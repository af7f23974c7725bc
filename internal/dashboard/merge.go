package dashboard

import "strings"

// MergeBundle overlays a lazily-fetched bundle payload onto a live
// item. Bundles are read-throughs, not edits: scalars overwrite only
// when the bundle supplies a non-empty value, array fields replace
// wholesale only when non-empty and re-normalized, the preview only
// when it carries columns, and absent fields never delete anything.
func MergeBundle(item *Item, raw RawRecord) {
	if item == nil || raw == nil {
		return
	}
	overlay := func(dst *string, keys ...string) {
		if v := raw.str(keys...); v != "" {
			*dst = v
		}
	}
	overlay(&item.Title, "title", "name")
	overlay(&item.Description, "description")
	overlay(&item.Text, "text", "sql_text", "sqlText", "sql")
	overlay(&item.LastRunLabel, "last_run_label", "lastRunLabel", "last_run", "lastRun")
	overlay(&item.Schedule, "schedule")
	overlay(&item.Provenance, "provenance", "source")
	overlay(&item.AnalysisSnapshot, "analysis_snapshot", "analysisSnapshot")

	if _, ok := raw.field("from_library", "fromLibrary", "library_used", "libraryUsed"); ok {
		item.FromLibrary = raw.boolean("from_library", "fromLibrary", "library_used", "libraryUsed")
	}

	if ct := ChartType(strings.ToLower(raw.str("chart_type", "chartType"))); KnownChartType(ct) {
		item.ChartType = ct
	}

	if p := NormalizePreview(raw.record("preview")); p != nil {
		item.Preview = p
	}
	if stats := coerceStats(raw.list("stats")); len(stats) > 0 {
		item.Stats = stats
	}
	if metrics := coerceMetrics(raw.list("metrics")); len(metrics) > 0 {
		item.Metrics = metrics
	}
	if charts := NormalizeChartSpecs(raw.list("recommended_charts", "recommendedCharts")); len(charts) > 0 {
		item.RecommendedCharts = charts
	}
	if pc := raw.record("primary_chart", "primaryChart"); pc != nil {
		if spec, ok := coerceChartSpec(pc); ok {
			item.PrimaryChart = &spec
		}
	}
}
