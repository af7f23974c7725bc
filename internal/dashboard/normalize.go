package dashboard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// folderTones is the rotating palette assigned to created folders.
var folderTones = []string{"blue", "emerald", "violet", "amber", "rose"}

// defaultFolderNames seed the folder set when the server returns none
// that survive validation. The first entry doubles as the catch-all
// target for items with no resolvable home.
var defaultFolderNames = []string{"General", "Reports", "Exploration"}

// ToneAt returns the display tone for the i-th folder, rotating
// through the palette.
func ToneAt(i int) string {
	if i < 0 {
		i = 0
	}
	return folderTones[i%len(folderTones)]
}

// allCategorySentinel is the legacy pseudo-category meaning "no folder".
const allCategorySentinel = "all"

const maxRecommendedCharts = 3

// legacyDemoPattern matches the placeholder SQL shipped with early demo
// seeds, e.g. "SELECT ... FROM patients".
var legacyDemoPattern = regexp.MustCompile(`(?i)\bSELECT\s*(\.\.\.|…)\s*FROM\b`)

// Result is the outcome of a normalization pass. Changed reports drift:
// the canonical output differs from the raw input in a way that should
// be written back to the server.
type Result struct {
	Snapshot *Snapshot
	Changed  bool
}

// Normalize converts raw, possibly malformed or legacy records into a
// canonical snapshot. The output honors every snapshot invariant: all
// folderIds resolve, metrics are non-empty, recommendedCharts hold at
// most three deduplicated entries. Normalize is idempotent: feeding its
// own output back yields an identical snapshot with Changed=false.
func Normalize(rawItems, rawFolders []RawRecord) Result {
	n := &normalizer{
		byID:   map[string]*Folder{},
		byName: map[string]*Folder{},
	}
	n.normalizeFolders(rawFolders)
	items := make([]Item, 0, len(rawItems))
	for _, raw := range rawItems {
		it, ok := n.normalizeItem(raw)
		if !ok {
			n.changed = true
			continue
		}
		items = append(items, it)
	}
	return Result{
		Snapshot: &Snapshot{Items: items, Folders: n.folders},
		Changed:  n.changed,
	}
}

// StripLegacyDemo removes fixed small-id demo seed rows whose query text
// literally matches the placeholder-SQL pattern. Callers apply it only
// when the server signals that the payload may carry stale seed data.
func StripLegacyDemo(items []RawRecord) (kept []RawRecord, removed bool) {
	kept = make([]RawRecord, 0, len(items))
	for _, raw := range items {
		id := raw.str("id")
		text := raw.str("text", "sql_text", "sqlText", "sql")
		if isLegacyDemoID(id) && legacyDemoPattern.MatchString(text) {
			removed = true
			continue
		}
		kept = append(kept, raw)
	}
	return kept, removed
}

func isLegacyDemoID(id string) bool {
	switch id {
	case "1", "2", "3", "4":
		return true
	}
	return false
}

type normalizer struct {
	folders []Folder
	byID    map[string]*Folder
	byName  map[string]*Folder
	changed bool
}

func (n *normalizer) normalizeFolders(raw []RawRecord) {
	for _, r := range raw {
		id := strings.TrimSpace(r.str("id"))
		name := strings.TrimSpace(r.str("name"))
		if id == "" || name == "" {
			n.changed = true
			continue
		}
		if _, dup := n.byID[id]; dup {
			n.changed = true
			continue
		}
		tone := r.str("tone", "color")
		if tone == "" {
			tone = folderTones[len(n.folders)%len(folderTones)]
		}
		n.addFolder(Folder{
			ID:        id,
			Name:      name,
			Tone:      tone,
			CreatedAt: r.str("created_at", "createdAt"),
		})
	}
	if len(n.folders) == 0 {
		for _, name := range defaultFolderNames {
			n.createFolder(name)
		}
	}
}

func (n *normalizer) addFolder(f Folder) *Folder {
	n.folders = append(n.folders, f)
	ptr := &n.folders[len(n.folders)-1]
	n.byID[f.ID] = ptr
	n.byName[strings.ToLower(f.Name)] = ptr
	return ptr
}

// createFolder mints a folder with the next palette tone. The id is
// derived from the name so repeated normalization of the same input
// creates the same folder.
func (n *normalizer) createFolder(name string) *Folder {
	id := folderSlug(name)
	for i := 2; ; i++ {
		if _, taken := n.byID[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", folderSlug(name), i)
	}
	return n.addFolder(Folder{
		ID:        id,
		Name:      name,
		Tone:      folderTones[len(n.folders)%len(folderTones)],
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func folderSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, slug)
	if slug == "" {
		slug = "folder"
	}
	return "folder-" + slug
}

// getOrCreateFolderByName resolves a folder case-insensitively by name,
// creating it when absent.
func (n *normalizer) getOrCreateFolderByName(name string) *Folder {
	if f, ok := n.byName[strings.ToLower(name)]; ok {
		return f
	}
	n.changed = true
	return n.createFolder(name)
}

func (n *normalizer) normalizeItem(raw RawRecord) (Item, bool) {
	id := strings.TrimSpace(raw.str("id"))
	if id == "" {
		// An id-less item cannot round-trip through persistence.
		return Item{}, false
	}

	rawFolderID := raw.str("folder_id", "folderId")
	rawCategory := strings.TrimSpace(raw.str("category"))
	folder := n.resolveFolder(rawFolderID, rawCategory)
	if folder.ID != rawFolderID || folder.Name != rawCategory {
		n.changed = true
	}

	it := Item{
		ID:               id,
		Title:            raw.str("title", "name"),
		Description:      raw.str("description"),
		Text:             raw.str("text", "sql_text", "sqlText", "sql"),
		LastRunLabel:     raw.str("last_run_label", "lastRunLabel", "last_run", "lastRun"),
		Schedule:         raw.str("schedule"),
		IsPinned:         raw.boolean("is_pinned", "isPinned", "pinned"),
		FolderID:         folder.ID,
		Category:         folder.Name,
		Provenance:       raw.str("provenance", "source"),
		FromLibrary:      raw.boolean("from_library", "fromLibrary", "library_used", "libraryUsed"),
		AnalysisSnapshot: raw.str("analysis_snapshot", "analysisSnapshot"),
		CreatedAt:        raw.str("created_at", "createdAt"),
	}

	it.Preview = NormalizePreview(raw.record("preview"))
	it.Stats = coerceStats(raw.list("stats"))
	it.Metrics = normalizeMetrics(raw.list("metrics"), it.Preview)

	ct := ChartType(strings.ToLower(raw.str("chart_type", "chartType")))
	if !KnownChartType(ct) {
		ct = ChartBar
	}
	it.ChartType = ct

	it.RecommendedCharts = NormalizeChartSpecs(raw.list("recommended_charts", "recommendedCharts"))
	if pc := raw.record("primary_chart", "primaryChart"); pc != nil {
		if spec, ok := coerceChartSpec(pc); ok {
			it.PrimaryChart = &spec
		}
	}
	return it, true
}

// resolveFolder maps an item to its home folder: direct id reference
// first, then the legacy category string, then the catch-all folder.
func (n *normalizer) resolveFolder(folderID, category string) *Folder {
	if f, ok := n.byID[folderID]; ok {
		return f
	}
	if category == "" || strings.EqualFold(category, allCategorySentinel) {
		return &n.folders[0]
	}
	return n.getOrCreateFolderByName(category)
}

// NormalizePreview coerces a raw preview record. A preview without
// columns carries nothing renderable and is dropped entirely.
func NormalizePreview(raw RawRecord) *Preview {
	if raw == nil {
		return nil
	}
	var cols []string
	for _, c := range raw.list("columns") {
		if s := coerceString(c); s != "" {
			cols = append(cols, s)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	var rows [][]any
	for _, r := range raw.list("rows") {
		if cells, ok := r.([]any); ok {
			rows = append(rows, cells)
		}
	}
	count := raw.integer("row_count", "rowCount")
	if count == 0 {
		count = len(rows)
	}
	return &Preview{
		Columns:  cols,
		Rows:     rows,
		RowCount: count,
		RowCap:   raw.integer("row_cap", "rowCap"),
	}
}

// normalizeMetrics drops blank pairs and backfills three metrics
// derived from the preview shape when none survive; items never render
// with an empty metric strip.
func normalizeMetrics(raw []any, preview *Preview) []Metric {
	if out := coerceMetrics(raw); len(out) > 0 {
		return out
	}
	return synthesizeMetrics(preview)
}

// coerceMetrics drops blank pairs without backfilling.
func coerceMetrics(raw []any) []Metric {
	var out []Metric
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rec := RawRecord(m)
		label := strings.TrimSpace(rec.str("label", "name"))
		value := strings.TrimSpace(rec.str("value"))
		if label == "" || value == "" {
			continue
		}
		out = append(out, Metric{Label: label, Value: value})
	}
	return out
}

// DefaultMetrics returns the metric strip synthesized from a preview's
// shape; it keeps freshly created items honoring the non-empty-metrics
// invariant.
func DefaultMetrics(preview *Preview) []Metric {
	return synthesizeMetrics(preview)
}

func synthesizeMetrics(preview *Preview) []Metric {
	rows, cols, cap := 0, 0, 0
	if preview != nil {
		rows = preview.RowCount
		cols = len(preview.Columns)
		cap = preview.RowCap
	}
	capLabel := "none"
	if cap > 0 {
		capLabel = strconv.Itoa(cap)
	}
	return []Metric{
		{Label: "Rows", Value: strconv.Itoa(rows)},
		{Label: "Columns", Value: strconv.Itoa(cols)},
		{Label: "Row cap", Value: capLabel},
	}
}

// NormalizeChartSpecs coerces, filters and dedupes recommended charts.
// Fallback-sourced entries are excluded and the list is capped at
// three. The same rules apply when bundle payloads replace the list.
func NormalizeChartSpecs(raw []any) []ChartSpec {
	var out []ChartSpec
	seen := map[string]struct{}{}
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		spec, ok := coerceChartSpec(RawRecord(m))
		if !ok {
			continue
		}
		key := chartKey(spec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, spec)
		if len(out) == maxRecommendedCharts {
			break
		}
	}
	return out
}

// coerceChartSpec returns ok=false for fallback-tagged specs.
func coerceChartSpec(raw RawRecord) (ChartSpec, bool) {
	if raw.boolean("is_fallback", "isFallback", "fallback") {
		return ChartSpec{}, false
	}
	cfg := raw.record("config")
	if cfg != nil && strings.EqualFold(cfg.str("source"), "fallback") {
		return ChartSpec{}, false
	}
	ct := ChartType(strings.ToLower(raw.str("type", "chart_type", "chartType")))
	if ct == "" {
		ct = ChartBar
	}
	spec := ChartSpec{
		ID:           raw.str("id"),
		Type:         ct,
		X:            raw.str("x", "x_column", "xColumn"),
		Y:            raw.str("y", "y_column", "yColumn"),
		ThumbnailURL: raw.str("thumbnail_url", "thumbnailUrl"),
		PNGURL:       raw.str("png_url", "pngUrl"),
	}
	if cfg != nil {
		spec.Config = map[string]any(cfg)
	}
	return spec, true
}

func chartKey(c ChartSpec) string {
	if c.ID != "" {
		return "id:" + c.ID
	}
	return strings.Join([]string{string(c.Type), c.X, c.Y}, "|")
}

func coerceStats(raw []any) []StatRow {
	var out []StatRow
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rec := RawRecord(m)
		col := rec.str("column", "name")
		if col == "" {
			continue
		}
		out = append(out, StatRow{
			Column:       col,
			Count:        rec.integer("count", "n"),
			MissingCount: rec.integer("missing_count", "missingCount"),
			NullCount:    rec.integer("null_count", "nullCount"),
			Min:          rec.float("min"),
			Q1:           rec.float("q1", "p25"),
			Median:       rec.float("median", "p50"),
			Q3:           rec.float("q3", "p75"),
			Max:          rec.float("max"),
		})
	}
	return out
}
