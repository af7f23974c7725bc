package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydeck/querydeck/internal/dashboard"
)

func embeddedConfig() map[string]any {
	return map[string]any{
		"figure": map[string]any{
			"data": []any{
				map[string]any{"type": "bar", "x": []any{"a"}, "y": []any{float64(1)}},
			},
			"layout": map[string]any{"title": "embedded"},
		},
	}
}

func TestResolve_EmbeddedFigureWins(t *testing.T) {
	it := &dashboard.Item{
		ChartType: dashboard.ChartBar,
		Preview: &dashboard.Preview{
			Columns: []string{"a", "n"},
			Rows:    [][]any{{"x", float64(1)}},
		},
		PrimaryChart: &dashboard.ChartSpec{
			Type:   dashboard.ChartBar,
			Config: embeddedConfig(),
			PNGURL: "https://charts/pic.png",
		},
	}

	res := Resolve(it, nil)
	require.NotNil(t, res)
	assert.Equal(t, KindEmbedded, res.Kind)
	require.NotNil(t, res.Embedded)
	assert.Empty(t, res.ImageURL)
}

func TestResolve_EmbeddedFigureAsJSONString(t *testing.T) {
	it := &dashboard.Item{
		PrimaryChart: &dashboard.ChartSpec{
			Config: map[string]any{
				"figure": `{"data": [{"type": "pie"}], "layout": {}}`,
			},
		},
	}

	res := Resolve(it, nil)
	require.NotNil(t, res)
	assert.Equal(t, KindEmbedded, res.Kind)
}

func TestResolve_RasterFallsBackFromPNGToThumbnail(t *testing.T) {
	it := &dashboard.Item{}

	res := Resolve(it, &dashboard.ChartSpec{PNGURL: "png", ThumbnailURL: "thumb"})
	require.NotNil(t, res)
	assert.Equal(t, KindImage, res.Kind)
	assert.Equal(t, "png", res.ImageURL)

	res = Resolve(it, &dashboard.ChartSpec{ThumbnailURL: "thumb"})
	require.NotNil(t, res)
	assert.Equal(t, "thumb", res.ImageURL)
}

func TestResolve_SynthesizesWhenNothingElse(t *testing.T) {
	it := &dashboard.Item{
		Title:     "Totals",
		ChartType: dashboard.ChartBar,
		Preview: &dashboard.Preview{
			Columns: []string{"region", "total"},
			Rows:    [][]any{{"west", float64(1)}},
		},
	}

	res := Resolve(it, nil)
	require.NotNil(t, res)
	assert.Equal(t, KindSynthesized, res.Kind)
	require.NotNil(t, res.Figure)
}

func TestResolve_NilWhenNothingRenderable(t *testing.T) {
	assert.Nil(t, Resolve(nil, nil))
	assert.Nil(t, Resolve(&dashboard.Item{ChartType: dashboard.ChartBar}, nil))
}

func TestResolve_SelectedOverridesPrimary(t *testing.T) {
	it := &dashboard.Item{
		PrimaryChart: &dashboard.ChartSpec{PNGURL: "primary.png"},
	}
	res := Resolve(it, &dashboard.ChartSpec{PNGURL: "selected.png"})
	require.NotNil(t, res)
	assert.Equal(t, "selected.png", res.ImageURL)
}

func TestPostProcessLayout_Minimums(t *testing.T) {
	fig := map[string]any{
		"data": []any{map[string]any{"type": "bar"}},
		"layout": map[string]any{
			"margin": map[string]any{"l": float64(10), "t": float64(120)},
			"xaxis": map[string]any{
				"title":    "month",
				"tickfont": map[string]any{"size": float64(8)},
			},
		},
	}

	postProcessLayout(fig)

	layout := fig["layout"].(map[string]any)
	margin := layout["margin"].(map[string]any)
	assert.Equal(t, minMarginLeft, margin["l"], "small margins raised to the floor")
	assert.Equal(t, float64(120), margin["t"], "larger margins never shrink")
	assert.Equal(t, minMarginRight, margin["r"], "absent margins filled in")

	xaxis := layout["xaxis"].(map[string]any)
	assert.Equal(t, true, xaxis["automargin"])
	assert.Equal(t, map[string]any{"text": "month"}, xaxis["title"],
		"string titles become structured objects")
	tickfont := xaxis["tickfont"].(map[string]any)
	assert.Equal(t, minTickFontSize, tickfont["size"])

	yaxis := layout["yaxis"].(map[string]any)
	assert.Equal(t, true, yaxis["automargin"], "missing axes are created")
}

func TestPostProcessLayout_CreatesLayoutWhenAbsent(t *testing.T) {
	fig := map[string]any{"data": []any{map[string]any{"type": "bar"}}}
	postProcessLayout(fig)

	layout, ok := fig["layout"].(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, layout["margin"])
}

func TestEmbeddedFigure_ConfigItselfWithData(t *testing.T) {
	cfg := map[string]any{
		"data":   []any{map[string]any{"type": "bar"}},
		"layout": map[string]any{},
	}
	assert.NotNil(t, embeddedFigure(cfg))

	assert.Nil(t, embeddedFigure(map[string]any{"data": []any{}}),
		"empty data array is not a figure")
	assert.Nil(t, embeddedFigure(nil))
}
