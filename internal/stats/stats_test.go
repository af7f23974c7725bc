package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydeck/querydeck/internal/dashboard"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   *float64
	}{
		{"empty sample", nil, 0.5, nil},
		{"single element any p", []float64{5}, 0.25, f(5)},
		{"median of four interpolates", []float64{1, 2, 3, 4}, 0.5, f(2.5)},
		{"median of odd sample exact", []float64{1, 2, 3}, 0.5, f(2)},
		{"q1 of four", []float64{1, 2, 3, 4}, 0.25, f(1.75)},
		{"q3 of four", []float64{1, 2, 3, 4}, 0.75, f(3.25)},
		{"p zero is min", []float64{3, 7, 9}, 0, f(3)},
		{"p one is max", []float64{3, 7, 9}, 1, f(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantile(tt.sorted, tt.p)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestCompute_ServerStatsPassThrough(t *testing.T) {
	supplied := []dashboard.StatRow{{Column: "x", Count: 10}}
	it := &dashboard.Item{
		Stats: supplied,
		Preview: &dashboard.Preview{
			Columns: []string{"x"},
			Rows:    [][]any{{float64(1)}},
		},
	}
	assert.Equal(t, supplied, Compute(it))
}

func TestCompute_NoPreview(t *testing.T) {
	assert.Nil(t, Compute(nil))
	assert.Nil(t, Compute(&dashboard.Item{}))
}

func TestCompute_NumericColumn(t *testing.T) {
	it := &dashboard.Item{Preview: &dashboard.Preview{
		Columns: []string{"total"},
		Rows: [][]any{
			{float64(4)},
			{float64(1)},
			{float64(3)},
			{float64(2)},
		},
	}}

	rows := Compute(it)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, 4, r.Count)
	assert.Equal(t, 0, r.MissingCount)
	require.NotNil(t, r.Min)
	assert.Equal(t, 1.0, *r.Min)
	assert.Equal(t, 4.0, *r.Max)
	assert.Equal(t, 1.75, *r.Q1)
	assert.Equal(t, 2.5, *r.Median)
	assert.Equal(t, 3.25, *r.Q3)
}

func TestCompute_MissingAndNullCounting(t *testing.T) {
	it := &dashboard.Item{Preview: &dashboard.Preview{
		Columns: []string{"a", "b"},
		Rows: [][]any{
			{"x", float64(1)},
			{nil, "  "},
			{"y"}, // ragged: column b absent
		},
	}}

	rows := Compute(it)
	require.Len(t, rows, 2)

	a := rows[0]
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 1, a.MissingCount)
	assert.Equal(t, 1, a.NullCount, "explicit null counts as null and missing")

	b := rows[1]
	assert.Equal(t, 1, b.Count)
	assert.Equal(t, 2, b.MissingCount, "blank string and absent cell are missing")
	assert.Equal(t, 0, b.NullCount, "absent cell is not a null")
}

func TestCompute_NonNumericColumnHasNilQuartiles(t *testing.T) {
	it := &dashboard.Item{Preview: &dashboard.Preview{
		Columns: []string{"region"},
		Rows:    [][]any{{"west"}, {"east"}},
	}}

	rows := Compute(it)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, 2, r.Count)
	assert.Nil(t, r.Min)
	assert.Nil(t, r.Median)
	assert.Nil(t, r.Max)
}

func TestCompute_NumericStringsJoinTheSample(t *testing.T) {
	it := &dashboard.Item{Preview: &dashboard.Preview{
		Columns: []string{"v"},
		Rows:    [][]any{{"10"}, {float64(20)}, {"not a number"}},
	}}

	rows := Compute(it)
	r := rows[0]
	assert.Equal(t, 3, r.Count, "non-numeric values still count as present")
	require.NotNil(t, r.Min)
	assert.Equal(t, 10.0, *r.Min)
	assert.Equal(t, 20.0, *r.Max)
}

func f(v float64) *float64 { return &v }
