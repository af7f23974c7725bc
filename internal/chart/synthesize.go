package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// sampleRows caps how many rows column-kind detection inspects.
const sampleRows = 50

type barVariant int

const (
	barGrouped barVariant = iota
	barStacked
	barPercent
	barHorizontal
)

// mineVariant picks a bar variant from keyword hints in the item's
// title and description.
func mineVariant(item *dashboard.Item) barVariant {
	hint := strings.ToLower(item.Title + " " + item.Description)
	switch {
	case strings.Contains(hint, "horizontal"):
		return barHorizontal
	case strings.Contains(hint, "100%") || strings.Contains(hint, "percent"):
		return barPercent
	case strings.Contains(hint, "stacked"):
		return barStacked
	default:
		return barGrouped
	}
}

// Synthesize builds a figure from the item's preview rows using its
// chart type and keyword hints. Returns nil when the preview has no
// rows or no numeric column; callers render an empty state instead of
// an empty chart.
func Synthesize(item *dashboard.Item, selected *dashboard.ChartSpec) *Figure {
	_ = selected
	p := item.Preview
	if p == nil || len(p.Rows) == 0 {
		return nil
	}
	numeric, categorical := classifyColumns(p)
	if len(numeric) == 0 {
		return nil
	}

	switch item.ChartType {
	case dashboard.ChartPie:
		if len(categorical) > 0 {
			return pieFigure(item, p, categorical[0], numeric[0])
		}
	case dashboard.ChartLine:
		if len(categorical) > 0 {
			return lineFigure(item, p, categorical[0], numeric[0])
		}
	case dashboard.ChartBar:
		variant := mineVariant(item)
		if len(numeric) >= 2 && len(categorical) >= 1 {
			return multiSeriesBar(item, p, categorical[0], numeric, variant)
		}
		if len(categorical) >= 2 {
			return pivotBar(item, p, categorical[0], categorical[1], numeric[0], variant)
		}
	}
	return fallbackBar(item, p, numeric[0])
}

// classifyColumns splits preview columns into numeric and categorical
// sets. A column is numeric only when every sampled non-empty value is
// a native number. String cells are categories even when they parse as
// numbers, so year-like labels ("2023") key axes instead of plotting
// as values.
func classifyColumns(p *dashboard.Preview) (numeric, categorical []int) {
	limit := len(p.Rows)
	if limit > sampleRows {
		limit = sampleRows
	}
	for col := range p.Columns {
		seen, allNumeric := 0, true
		for _, row := range p.Rows[:limit] {
			if col >= len(row) || row[col] == nil {
				continue
			}
			if s, ok := row[col].(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			seen++
			if !isNativeNumber(row[col]) {
				allNumeric = false
				break
			}
		}
		if seen > 0 && allNumeric {
			numeric = append(numeric, col)
		} else {
			categorical = append(categorical, col)
		}
	}
	return numeric, categorical
}

func isNativeNumber(cell any) bool {
	switch t := cell.(type) {
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32, int, int64:
		return true
	}
	return false
}

func pieFigure(item *dashboard.Item, p *dashboard.Preview, labelCol, valueCol int) *Figure {
	order := []any{}
	sums := map[string]float64{}
	idx := map[string]int{}
	var values []float64
	for _, row := range p.Rows {
		label := cellAt(row, labelCol)
		if label == nil {
			continue
		}
		v, ok := numberOf(cellAt(row, valueCol))
		if !ok {
			continue
		}
		key := cellKey(label)
		if _, seen := sums[key]; !seen {
			idx[key] = len(order)
			order = append(order, label)
			values = append(values, 0)
		}
		sums[key] += v
		values[idx[key]] = sums[key]
	}
	if len(order) == 0 {
		return nil
	}
	return &Figure{
		Data:   []Trace{{Type: "pie", Labels: order, Values: values}},
		Layout: baseLayout(item, "", ""),
	}
}

func lineFigure(item *dashboard.Item, p *dashboard.Preview, xCol, yCol int) *Figure {
	var xs []any
	var ys []any
	for _, row := range p.Rows {
		x := cellAt(row, xCol)
		y, ok := numberOf(cellAt(row, yCol))
		if x == nil || !ok {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return nil
	}
	return &Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			Name: p.Columns[yCol],
			X:    xs,
			Y:    ys,
		}},
		Layout: baseLayout(item, p.Columns[xCol], p.Columns[yCol]),
	}
}

// multiSeriesBar emits one trace per numeric column over a shared
// categorical x axis.
func multiSeriesBar(item *dashboard.Item, p *dashboard.Preview, xCol int, numeric []int, variant barVariant) *Figure {
	var xs []any
	ys := make([][]any, len(numeric))
	for _, row := range p.Rows {
		x := cellAt(row, xCol)
		if x == nil {
			continue
		}
		xs = append(xs, x)
		for i, col := range numeric {
			v, _ := numberOf(cellAt(row, col))
			ys[i] = append(ys[i], v)
		}
	}
	if len(xs) == 0 {
		return nil
	}
	fig := &Figure{Layout: baseLayout(item, p.Columns[xCol], "")}
	applyBarVariant(&fig.Layout, variant)
	for i, col := range numeric {
		fig.Data = append(fig.Data, Trace{
			Type: "bar",
			Name: p.Columns[col],
			X:    xs,
			Y:    ys[i],
		})
	}
	return fig
}

// pivotBar handles one numeric measure sliced by two categorical
// columns: the first categorical keys the series traces, the second
// supplies the x categories, and the measure is pivot-summed into a
// dense series×category matrix.
func pivotBar(item *dashboard.Item, p *dashboard.Preview, seriesCol, xCol, valueCol int, variant barVariant) *Figure {
	var categories []any
	catIdx := map[string]int{}
	var seriesOrder []string
	sums := map[string][]float64{}

	for _, row := range p.Rows {
		series := cellAt(row, seriesCol)
		x := cellAt(row, xCol)
		if series == nil || x == nil {
			continue
		}
		v, ok := numberOf(cellAt(row, valueCol))
		if !ok {
			continue
		}
		xKey := cellKey(x)
		if _, seen := catIdx[xKey]; !seen {
			catIdx[xKey] = len(categories)
			categories = append(categories, x)
			for _, name := range seriesOrder {
				sums[name] = append(sums[name], 0)
			}
		}
		sKey := cellKey(series)
		if _, seen := sums[sKey]; !seen {
			seriesOrder = append(seriesOrder, sKey)
			sums[sKey] = make([]float64, len(categories))
		}
		sums[sKey][catIdx[xKey]] += v
	}
	if len(categories) == 0 {
		return nil
	}

	fig := &Figure{Layout: baseLayout(item, p.Columns[xCol], p.Columns[valueCol])}
	applyBarVariant(&fig.Layout, variant)
	horizontal := variant == barHorizontal
	if horizontal {
		fig.Layout.XAxis, fig.Layout.YAxis = fig.Layout.YAxis, fig.Layout.XAxis
	}
	for _, name := range seriesOrder {
		tr := Trace{Type: "bar", Name: name}
		values := floatsToAny(sums[name])
		if horizontal {
			tr.Orientation = "h"
			tr.X, tr.Y = values, categories
		} else {
			tr.X, tr.Y = categories, values
		}
		fig.Data = append(fig.Data, tr)
	}
	return fig
}

func fallbackBar(item *dashboard.Item, p *dashboard.Preview, valueCol int) *Figure {
	var xs, ys []any
	for i, row := range p.Rows {
		v, ok := numberOf(cellAt(row, valueCol))
		if !ok {
			continue
		}
		x := cellAt(row, 0)
		if x == nil {
			x = i + 1
		}
		xs = append(xs, x)
		ys = append(ys, v)
	}
	if len(xs) == 0 {
		return nil
	}
	return &Figure{
		Data: []Trace{{
			Type: "bar",
			Name: p.Columns[valueCol],
			X:    xs,
			Y:    ys,
		}},
		Layout: baseLayout(item, p.Columns[0], p.Columns[valueCol]),
	}
}

func applyBarVariant(layout *Layout, variant barVariant) {
	switch variant {
	case barStacked, barHorizontal:
		layout.Barmode = "stack"
	case barPercent:
		layout.Barmode = "stack"
		layout.Barnorm = "percent"
	default:
		layout.Barmode = "group"
	}
}

func baseLayout(item *dashboard.Item, xTitle, yTitle string) Layout {
	l := Layout{
		Title:  item.Title,
		Margin: &Margin{L: minMarginLeft, R: minMarginRight, T: minMarginTop, B: minMarginBottom},
		XAxis:  &Axis{AutoMargin: true, TickFont: &Font{Size: minTickFontSize}},
		YAxis:  &Axis{AutoMargin: true, TickFont: &Font{Size: minTickFontSize}},
	}
	if xTitle != "" {
		l.XAxis.Title = &AxisTitle{Text: xTitle}
	}
	if yTitle != "" {
		l.YAxis.Title = &AxisTitle{Text: yTitle}
	}
	return l
}

func floatsToAny(fs []float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func cellAt(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

func cellKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func numberOf(cell any) (float64, bool) {
	switch t := cell.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
