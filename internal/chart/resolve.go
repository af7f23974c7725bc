package chart

import (
	"encoding/json"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// Minimums enforced on embedded figure layouts. Larger caller-supplied
// values always win.
const (
	minMarginLeft   = 48.0
	minMarginRight  = 24.0
	minMarginTop    = 48.0
	minMarginBottom = 48.0
	minTickFontSize = 11.0
)

// Resolve picks the best renderable figure for an item, in priority
// order: a serialized figure embedded in the selected chart's config, a
// raster reference, then synthesis from preview rows. A nil result
// means nothing is renderable and the caller must show an explicit
// empty state.
func Resolve(item *dashboard.Item, selected *dashboard.ChartSpec) *Resolved {
	if item == nil {
		return nil
	}
	if selected == nil {
		selected = item.PrimaryChart
	}
	if selected != nil {
		if fig := embeddedFigure(selected.Config); fig != nil {
			postProcessLayout(fig)
			return &Resolved{Kind: KindEmbedded, Embedded: fig}
		}
		if url := rasterURL(selected); url != "" {
			return &Resolved{Kind: KindImage, ImageURL: url}
		}
	}
	fig := Synthesize(item, selected)
	if fig == nil {
		return nil
	}
	return &Resolved{Kind: KindSynthesized, Figure: fig}
}

func rasterURL(spec *dashboard.ChartSpec) string {
	if spec.PNGURL != "" {
		return spec.PNGURL
	}
	return spec.ThumbnailURL
}

// embeddedFigure extracts a serialized figure from a chart config. The
// figure may be a nested object, a JSON string, or the config itself
// when it carries a data array.
func embeddedFigure(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	switch fig := cfg["figure"].(type) {
	case map[string]any:
		if hasTraces(fig) {
			return fig
		}
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(fig), &parsed); err == nil && hasTraces(parsed) {
			return parsed
		}
	}
	if hasTraces(cfg) {
		return cfg
	}
	return nil
}

func hasTraces(fig map[string]any) bool {
	data, ok := fig["data"].([]any)
	return ok && len(data) > 0
}

// postProcessLayout normalizes an embedded figure's layout in place:
// minimum margins, auto-margined axes with a tick-font floor, and the
// structured axis-title object. Explicitly larger caller values are
// never shrunk.
func postProcessLayout(fig map[string]any) {
	layout, ok := fig["layout"].(map[string]any)
	if !ok {
		layout = map[string]any{}
		fig["layout"] = layout
	}

	margin, ok := layout["margin"].(map[string]any)
	if !ok {
		margin = map[string]any{}
		layout["margin"] = margin
	}
	raiseTo(margin, "l", minMarginLeft)
	raiseTo(margin, "r", minMarginRight)
	raiseTo(margin, "t", minMarginTop)
	raiseTo(margin, "b", minMarginBottom)

	for _, key := range []string{"xaxis", "yaxis"} {
		axis, ok := layout[key].(map[string]any)
		if !ok {
			axis = map[string]any{}
			layout[key] = axis
		}
		axis["automargin"] = true

		tickfont, ok := axis["tickfont"].(map[string]any)
		if !ok {
			tickfont = map[string]any{}
			axis["tickfont"] = tickfont
		}
		raiseTo(tickfont, "size", minTickFontSize)

		// Plotly accepts both a bare string and {text: ...}; emit the
		// structured form so downstream styling can extend it.
		if text, ok := axis["title"].(string); ok {
			axis["title"] = map[string]any{"text": text}
		}
	}
}

// raiseTo sets m[key] to at least floor, keeping larger values.
func raiseTo(m map[string]any, key string, floor float64) {
	if v, ok := asFloat(m[key]); ok && v >= floor {
		return
	}
	m[key] = floor
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
