// Package dashboard defines the canonical data model for saved-query
// dashboards and the normalization pass that turns raw server payloads
// into invariant-respecting snapshots.
package dashboard

// ChartType identifies one of the renderable chart kinds.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// KnownChartType reports whether t is one of the supported chart kinds.
func KnownChartType(t ChartType) bool {
	switch t {
	case ChartBar, ChartLine, ChartPie:
		return true
	}
	return false
}

// Folder groups saved queries. Names are unique case-insensitively
// among siblings.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Tone      string `json:"tone"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Metric is a label/value pair shown on an item card.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Preview holds the cached tabular result of a saved query.
// Rows are positional and aligned with Columns.
type Preview struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"rowCount"`
	RowCap   int      `json:"rowCap,omitempty"`
}

// ChartSpec describes one recommended or primary chart for an item.
// Config may embed a serialized figure produced server-side.
type ChartSpec struct {
	ID           string         `json:"id"`
	Type         ChartType      `json:"type"`
	X            string         `json:"x,omitempty"`
	Y            string         `json:"y,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	PNGURL       string         `json:"pngUrl,omitempty"`
}

// StatRow holds per-column descriptive statistics. Numeric fields are
// nil for non-numeric columns and for empty samples.
type StatRow struct {
	Column       string   `json:"column"`
	Count        int      `json:"count"`
	MissingCount int      `json:"missingCount"`
	NullCount    int      `json:"nullCount"`
	Min          *float64 `json:"min"`
	Q1           *float64 `json:"q1"`
	Median       *float64 `json:"median"`
	Q3           *float64 `json:"q3"`
	Max          *float64 `json:"max"`
}

// Item is one saved query with its denormalized display state.
type Item struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Text              string      `json:"text"`
	LastRunLabel      string      `json:"lastRunLabel,omitempty"`
	Schedule          string      `json:"schedule,omitempty"`
	IsPinned          bool        `json:"isPinned"`
	FolderID          string      `json:"folderId"`
	Category          string      `json:"category"`
	Provenance        string      `json:"provenance,omitempty"`
	FromLibrary       bool        `json:"fromLibrary,omitempty"`
	AnalysisSnapshot  string      `json:"analysisSnapshot,omitempty"`
	Preview           *Preview    `json:"preview,omitempty"`
	Stats             []StatRow   `json:"stats,omitempty"`
	Metrics           []Metric    `json:"metrics"`
	ChartType         ChartType   `json:"chartType"`
	RecommendedCharts []ChartSpec `json:"recommendedCharts,omitempty"`
	PrimaryChart      *ChartSpec  `json:"primaryChart,omitempty"`
	CreatedAt         string      `json:"createdAt,omitempty"`
}

// Snapshot is the paired items+folders unit of cache and persistence.
type Snapshot struct {
	Items   []Item   `json:"items"`
	Folders []Folder `json:"folders"`
}

// FolderByID returns the folder with the given id, or nil.
func (s *Snapshot) FolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// ItemByID returns the item with the given id, or nil.
func (s *Snapshot) ItemByID(id string) *Item {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// ItemIDs returns the set of item ids present in the snapshot.
func (s *Snapshot) ItemIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Items))
	for i := range s.Items {
		ids[s.Items[i].ID] = struct{}{}
	}
	return ids
}

// Clone returns a deep copy of the snapshot. Mutation rollback and the
// cache both depend on copies being fully independent.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Items:   make([]Item, len(s.Items)),
		Folders: make([]Folder, len(s.Folders)),
	}
	copy(out.Folders, s.Folders)
	for i := range s.Items {
		out.Items[i] = cloneItem(s.Items[i])
	}
	return out
}

func cloneItem(it Item) Item {
	out := it
	if it.Preview != nil {
		p := *it.Preview
		p.Columns = append([]string(nil), it.Preview.Columns...)
		p.Rows = make([][]any, len(it.Preview.Rows))
		for i, row := range it.Preview.Rows {
			p.Rows[i] = append([]any(nil), row...)
		}
		out.Preview = &p
	}
	out.Stats = append([]StatRow(nil), it.Stats...)
	out.Metrics = append([]Metric(nil), it.Metrics...)
	out.RecommendedCharts = cloneCharts(it.RecommendedCharts)
	if it.PrimaryChart != nil {
		pc := cloneChart(*it.PrimaryChart)
		out.PrimaryChart = &pc
	}
	return out
}

func cloneCharts(specs []ChartSpec) []ChartSpec {
	if specs == nil {
		return nil
	}
	out := make([]ChartSpec, len(specs))
	for i, c := range specs {
		out[i] = cloneChart(c)
	}
	return out
}

func cloneChart(c ChartSpec) ChartSpec {
	out := c
	if c.Config != nil {
		cfg := make(map[string]any, len(c.Config))
		for k, v := range c.Config {
			cfg[k] = v
		}
		out.Config = cfg
	}
	return out
}
