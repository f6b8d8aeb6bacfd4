package persist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStateStore(t *testing.T) *StateStoreImpl {
	t.Helper()
	store, err := NewStateStore(stateTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStateStore_SQLite(t *testing.T) {
	store := newSQLiteStateStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("a", []byte(`{"version":1}`), 1, 100))
	value, version, ts, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":1}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Upsert replaces the existing row
	require.NoError(t, store.Set("a", []byte("second"), 1, 200))
	value, _, ts, err = store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
	assert.Equal(t, int64(200), ts)

	require.NoError(t, store.Delete("a"))
	_, _, _, err = store.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete("a"))
}

func TestStateStore_Status(t *testing.T) {
	store := newSQLiteStateStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalEntries)

	require.NoError(t, store.Set("old", []byte("x"), 1, 1000))
	require.NoError(t, store.Set("new", []byte("y"), 1, 5000))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(5000, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	assert.Greater(t, status.TableSizeBytes, int64(0))
}

func TestStateStore_NoneBackend(t *testing.T) {
	store, err := NewStateStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	// Set is a no-op, so Get keeps missing
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete("k"))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewStateStore_InvalidTableName(t *testing.T) {
	for _, name := range []string{"", "1abc", "drop table;", "a-b"} {
		_, err := NewStateStore(name, schema.NoneBackend, "")
		assert.Error(t, err, "table name %q", name)
	}
}

func TestQueryHelpers(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))

	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 7))

	_, err := driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestFormatTime_SQLiteOrdersAsText(t *testing.T) {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier := formatTime(base, schema.SQLiteBackend).(string)
	later := formatTime(base.Add(500*time.Millisecond), schema.SQLiteBackend).(string)
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))

	tc := timeColumn{backend: schema.SQLiteBackend, s: later}
	got, err := tc.value()
	require.NoError(t, err)
	assert.True(t, got.Equal(base.Add(500*time.Millisecond)))
}
