//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv points both stores at fresh SQLite files.
func sqliteEnv(t *testing.T) []string {
	dir := t.TempDir()
	return []string{
		"SAFE_STATE_DB_CONNECT=" + filepath.Join(dir, "state.db"),
		"SAFE_ASSESSMENT_DB_CONNECT=" + filepath.Join(dir, "assessments.db"),
	}
}

// TestSafeWithSQLite drives the assessment lifecycle on the default backend.
func TestSafeWithSQLite(t *testing.T) {
	env := sqliteEnv(t)
	runLifecycle(t, env)

	out := filepath.Join(t.TempDir(), "export")
	mustRun(t, env, "store", "export", "--output-file", out)
	for _, suffix := range []string{".assessments.parquet", ".score_records.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

// TestScoreStateFile scores a state document without any store.
func TestScoreStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := `{"version":1,"ratings":[{"dimension":"Digital Inclusion & Accessible Technology","kpi":"Digital Infrastructure & Connectivity","metric":"Broadband penetration rate among 60+ population","value":5}]}`
	require.NoError(t, os.WriteFile(path, []byte(state), 0o600))

	out := mustRun(t, []string{"SAFE_STATE_BACKEND=none", "SAFE_ASSESSMENT_BACKEND=none"}, "score", path, "--output", "json")

	var report struct {
		Subject      string `json:"subject"`
		RatedMetrics int    `json:"ratedMetrics"`
		TotalMetrics int    `json:"totalMetrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "state.json", report.Subject)
	assert.Equal(t, 1, report.RatedMetrics)
	assert.Equal(t, 350, report.TotalMetrics)
}

// TestCatalogCommand lists the embedded catalog.
func TestCatalogCommand(t *testing.T) {
	out := mustRun(t, nil, "catalog", "--output", "json")
	var summary []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary, 10)
}

// TestInvalidOutputRejected checks flag validation.
func TestInvalidOutputRejected(t *testing.T) {
	_, err := runSafeCommand(t, nil, "catalog", "--output", "pdf")
	assert.Error(t, err)
}
