package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydeck/querydeck/internal/dashboard"
)

func TestSession_SelectCapsAtThree(t *testing.T) {
	s := NewSession()

	require.NoError(t, s.Select("a"))
	require.NoError(t, s.Select("b"))
	require.NoError(t, s.Select("c"))

	err := s.Select("d")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSelectionFull)
	assert.Equal(t, []string{"a", "b", "c"}, s.Selected(),
		"rejected select leaves the selection unchanged")
}

func TestSession_SelectDuplicateIsNoOp(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select("a"))
	require.NoError(t, s.Select("a"))
	assert.Equal(t, []string{"a"}, s.Selected())

	// a repeat on a full selection is still not an error
	require.NoError(t, s.Select("b"))
	require.NoError(t, s.Select("c"))
	require.NoError(t, s.Select("a"))
}

func TestSession_DeselectDropsBookkeeping(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select("a"))
	require.NoError(t, s.Select("b"))
	s.ToggleVisible("a")
	s.Execute([]string{"a"}, func(string) *dashboard.Item { return nil })

	s.Deselect("a")

	assert.Equal(t, []string{"b"}, s.Selected())
	assert.True(t, s.Visible("a"), "visibility state resets on deselect")
	assert.Empty(t, s.Results())
}

func TestSession_Reorder(t *testing.T) {
	tests := []struct {
		name   string
		drag   string
		drop   string
		want   []string
		before []string
	}{
		{"move first to last", "a", "c", []string{"b", "c", "a"}, []string{"a", "b", "c"}},
		{"move last to first", "c", "a", []string{"c", "a", "b"}, []string{"a", "b", "c"}},
		{"adjacent swap", "b", "a", []string{"b", "a", "c"}, []string{"a", "b", "c"}},
		{"unknown drag id ignored", "z", "a", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"unknown drop id ignored", "a", "z", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"same id ignored", "b", "b", []string{"a", "b", "c"}, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			for _, id := range tt.before {
				require.NoError(t, s.Select(id))
			}
			s.Reorder(tt.drag, tt.drop)
			assert.Equal(t, tt.want, s.Selected())
		})
	}
}

func TestSession_ToggleVisible(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select("a"))

	assert.True(t, s.Visible("a"))
	s.ToggleVisible("a")
	assert.False(t, s.Visible("a"))
	s.ToggleVisible("a")
	assert.True(t, s.Visible("a"))
}

func TestSession_Execute(t *testing.T) {
	items := map[string]*dashboard.Item{
		"a": {
			ID: "a",
			Preview: &dashboard.Preview{
				Columns: []string{"x"},
				Rows:    [][]any{{float64(1)}},
			},
		},
		"b": {ID: "b"}, // no preview
	}
	lookup := func(id string) *dashboard.Item { return items[id] }

	s := NewSession()
	require.NoError(t, s.Select("a"))
	require.NoError(t, s.Select("b"))
	require.NoError(t, s.Select("c"))

	s.Execute([]string{"a", "b", "c", "outside"}, lookup)

	results := s.Results()
	require.Len(t, results, 3, "ids outside the selection are ignored")

	require.NotNil(t, results["a"].Data)
	assert.Equal(t, []string{"x"}, results["a"].Data.Columns)
	assert.Empty(t, results["a"].Error)

	assert.NotEmpty(t, results["b"].Error, "missing preview yields a per-id error")
	assert.Nil(t, results["b"].Data)

	assert.NotEmpty(t, results["c"].Error, "vanished item yields a per-id error")
}

func TestSession_Prune(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Select("a"))
	require.NoError(t, s.Select("b"))
	s.ToggleVisible("b")
	s.Execute([]string{"a", "b"}, func(string) *dashboard.Item { return nil })

	s.Prune(map[string]struct{}{"a": {}})

	assert.Equal(t, []string{"a"}, s.Selected())
	assert.True(t, s.Visible("b"))
	results := s.Results()
	require.Len(t, results, 1)
	assert.Contains(t, results, "a")
}
