// Package stats derives per-column descriptive statistics from cached
// preview rows when the server did not supply them.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// Compute returns one StatRow per preview column. Server-supplied stats
// take precedence and pass through untouched; otherwise each column is
// profiled from the raw rows. Items without a preview yield nil.
func Compute(item *dashboard.Item) []dashboard.StatRow {
	if item == nil {
		return nil
	}
	if len(item.Stats) > 0 {
		return item.Stats
	}
	if item.Preview == nil {
		return nil
	}
	rows := item.Preview.Rows
	out := make([]dashboard.StatRow, 0, len(item.Preview.Columns))
	for col, name := range item.Preview.Columns {
		out = append(out, profileColumn(name, col, rows))
	}
	return out
}

func profileColumn(name string, col int, rows [][]any) dashboard.StatRow {
	row := dashboard.StatRow{Column: name}
	var sample []float64
	for _, r := range rows {
		if col >= len(r) {
			// Ragged row: the cell is absent, not null.
			row.MissingCount++
			continue
		}
		cell := r[col]
		switch {
		case cell == nil:
			// Explicit nulls count as both null and missing.
			row.NullCount++
			row.MissingCount++
		case isBlank(cell):
			row.MissingCount++
		default:
			row.Count++
			if f, ok := toNumber(cell); ok {
				sample = append(sample, f)
			}
		}
	}
	if len(sample) == 0 {
		return row
	}
	sort.Float64s(sample)
	row.Min = ptr(sample[0])
	row.Max = ptr(sample[len(sample)-1])
	row.Q1 = Quantile(sample, 0.25)
	row.Median = Quantile(sample, 0.5)
	row.Q3 = Quantile(sample, 0.75)
	return row
}

// Quantile computes a linearly interpolated order statistic over an
// ascending sample at fractional rank (n-1)*p. A non-integer rank
// blends its two neighbors proportionally to the fractional part; a
// single-element sample answers that value for every p; an empty
// sample answers nil.
func Quantile(sorted []float64, p float64) *float64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return ptr(sorted[0])
	}
	rank := float64(n-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return ptr(sorted[lo])
	}
	frac := rank - float64(lo)
	return ptr(sorted[lo]*(1-frac) + sorted[hi]*frac)
}

func isBlank(cell any) bool {
	s, ok := cell.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toNumber(cell any) (float64, bool) {
	switch t := cell.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func ptr(f float64) *float64 { return &f }
