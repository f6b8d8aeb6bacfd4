package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAssessments(t *testing.T) {
	store := newSQLiteAssessmentStore(t)
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateAssessment(newRecord("a", "Leeds", base)))
	_, err := store.RecordScore(schema.ScoreRecord{
		AssessmentID:     "a",
		ScoredAt:         base,
		Overall:          2.1,
		CompletionPolicy: schema.SimpleCompletion,
		Category:         "Needs Improvement",
		DimensionScores:  `{"overall":2.1,"dimensions":{}}`,
	})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExportAssessments(store, out))

	for _, suffix := range []string{".assessments.parquet", ".score_records.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExportAssessments_Errors(t *testing.T) {
	t.Run("missing output file", func(t *testing.T) {
		err := ExportAssessments(&MockAssessmentStore{}, "")
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("nil store", func(t *testing.T) {
		assert.Error(t, ExportAssessments(nil, "out"))
	})

	t.Run("empty store", func(t *testing.T) {
		store := &MockAssessmentStore{}
		store.On("GetStatus").Return(schema.AssessmentStoreStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExportAssessments(store, "out")
		assert.ErrorContains(t, err, "no assessment data")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockAssessmentStore{}
		store.On("GetStatus").Return(schema.AssessmentStoreStatus{}, errors.New("offline"))
		assert.ErrorContains(t, ExportAssessments(store, "out"), "offline")
	})
}
