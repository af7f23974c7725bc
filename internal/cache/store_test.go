package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydeck/querydeck/internal/dashboard"
)

func sampleSnapshot() *dashboard.Snapshot {
	return &dashboard.Snapshot{
		Folders: []dashboard.Folder{{ID: "f1", Name: "General", Tone: "blue"}},
		Items: []dashboard.Item{{
			ID:        "q1",
			Title:     "Orders",
			Text:      "SELECT * FROM orders",
			FolderID:  "f1",
			Category:  "General",
			ChartType: dashboard.ChartBar,
			Metrics:   []dashboard.Metric{{Label: "Rows", Value: "2"}},
			Preview: &dashboard.Preview{
				Columns:  []string{"region", "total"},
				Rows:     [][]any{{"west", float64(10)}},
				RowCount: 1,
			},
		}},
	}
}

// exerciseStore runs the Store contract against any implementation.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, ok := s.Get("nobody")
	assert.False(t, ok)

	require.NoError(t, s.Put("alice", sampleSnapshot()))
	got, ok := s.Get("alice")
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Orders", got.Items[0].Title)

	// keys are independent
	_, ok = s.Get("bob")
	assert.False(t, ok)

	// put replaces
	next := sampleSnapshot()
	next.Items[0].Title = "Orders v2"
	require.NoError(t, s.Put("alice", next))
	got, ok = s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "Orders v2", got.Items[0].Title)

	require.NoError(t, s.Delete("alice"))
	_, ok = s.Get("alice")
	assert.False(t, ok)

	require.NoError(t, s.Delete("alice"), "deleting a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStore_ReturnsIndependentCopies(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	original := sampleSnapshot()
	require.NoError(t, s.Put("alice", original))

	// mutating the stored-from value must not leak into the cache
	original.Items[0].Title = "changed after put"
	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "Orders", got.Items[0].Title)

	// mutating a read must not leak back either
	got.Items[0].Preview.Rows[0][0] = "tampered"
	again, _ := s.Get("alice")
	assert.Equal(t, "west", again.Items[0].Preview.Rows[0][0])
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("alice", sampleSnapshot()))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "Orders", got.Items[0].Title)
	require.NotNil(t, got.Items[0].Preview)
	assert.Equal(t, 1, got.Items[0].Preview.RowCount)
}

func TestSQLiteStore_NilSnapshotRejected(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Put("alice", nil))
}
