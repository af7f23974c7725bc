// Package chart resolves a renderable figure for a dashboard item from
// a stored figure spec, a raster reference, or heuristic synthesis over
// the item's preview rows.
package chart

// Figure is a plotly-shaped chart description: a list of traces plus
// layout hints. It serializes to the JSON the front-end plots directly.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single plotted series.
type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Mode string `json:"mode,omitempty"`
	// X and Y are loosely typed: horizontal bars carry category
	// values on the y axis.
	X           []any     `json:"x,omitempty"`
	Y           []any     `json:"y,omitempty"`
	Labels      []any     `json:"labels,omitempty"`
	Values      []float64 `json:"values,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
}

// Layout carries the subset of plotly layout the synthesizer emits.
type Layout struct {
	Title   string  `json:"title,omitempty"`
	Barmode string  `json:"barmode,omitempty"`
	Barnorm string  `json:"barnorm,omitempty"`
	Margin  *Margin `json:"margin,omitempty"`
	XAxis   *Axis   `json:"xaxis,omitempty"`
	YAxis   *Axis   `json:"yaxis,omitempty"`
}

// Margin is a plotly margin block in pixels.
type Margin struct {
	L float64 `json:"l"`
	R float64 `json:"r"`
	T float64 `json:"t"`
	B float64 `json:"b"`
}

// Axis holds per-axis layout hints.
type Axis struct {
	Title      *AxisTitle `json:"title,omitempty"`
	AutoMargin bool       `json:"automargin,omitempty"`
	TickFont   *Font      `json:"tickfont,omitempty"`
}

// AxisTitle is the structured axis-title object plotly expects.
type AxisTitle struct {
	Text string `json:"text"`
}

// Font carries font sizing for tick labels.
type Font struct {
	Size float64 `json:"size,omitempty"`
}

// Kind discriminates how a figure was resolved.
type Kind string

const (
	// KindEmbedded means a serialized figure stored in the chart spec
	// config was used verbatim (layout post-processed).
	KindEmbedded Kind = "embedded"
	// KindImage means a raster reference is rendered instead of a
	// synthesized chart.
	KindImage Kind = "image"
	// KindSynthesized means the figure was built from preview rows.
	KindSynthesized Kind = "synthesized"
)

// Resolved is the outcome of figure resolution. Exactly one of
// Embedded, ImageURL or Figure is populated, per Kind.
type Resolved struct {
	Kind     Kind           `json:"kind"`
	Embedded map[string]any `json:"embedded,omitempty"`
	ImageURL string         `json:"imageUrl,omitempty"`
	Figure   *Figure        `json:"figure,omitempty"`
}
