package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAssessments_NoneBackend(t *testing.T) {
	err := MigrateAssessments(schema.NoneBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAssessments_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration.db")

	// Latest version
	require.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	// Re-running is a no-op
	assert.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, -1))

	// Step down to version 1, then roll everything back
	assert.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, 0))

	// And up again
	assert.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, 2))
}

func TestMigrateAssessments_StoreCompatible(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrated.db")
	require.NoError(t, MigrateAssessments(schema.SQLiteBackend, dbPath, -1))

	// The store opens a migrated database without clashing with existing tables
	store, err := NewAssessmentStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalAssessments)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		entries, err := migrationsFS.ReadDir("migrations/" + string(backend))
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, "backend %s should ship up and down files for two versions", backend)
	}
}
