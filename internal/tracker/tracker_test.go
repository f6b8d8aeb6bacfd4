package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	stepFree = schema.MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Step-free stations"}
	shelters = schema.MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Bus shelters"}
	benches  = schema.MetricKey{Dimension: "Mobility", KPI: "Streets", Metric: "Benches"}
	rails    = schema.MetricKey{Dimension: "Housing", KPI: "Adaptation", Metric: "Grab rails"}
)

func testTaxonomy() *schema.Taxonomy {
	return &schema.Taxonomy{
		Version: 1,
		Dimensions: []schema.Dimension{
			{Name: "Mobility", KPIs: []schema.KPITheme{
				{Name: "Transit", Metrics: []schema.Metric{
					{Name: "Step-free stations", Priority: schema.PriorityA},
					{Name: "Bus shelters", Priority: schema.PriorityB},
				}},
				{Name: "Streets", Metrics: []schema.Metric{
					{Name: "Benches", Priority: schema.PriorityC},
				}},
			}},
			{Name: "Housing", KPIs: []schema.KPITheme{
				{Name: "Adaptation", Metrics: []schema.Metric{
					{Name: "Grab rails", Priority: schema.PriorityA},
				}},
			}},
		},
	}
}

// newTestService wires a Service to SQLite stores in a temp dir with a fake clock.
func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()

	states, err := persist.NewStateStore("safe_state", schema.SQLiteBackend, filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = states.Close() })
	assessments, err := persist.NewAssessmentStore(schema.SQLiteBackend, filepath.Join(dir, "assessments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = assessments.Close() })

	mgr := &persist.MockStoreManager{}
	mgr.On("GetStateStore").Return(states)
	mgr.On("GetAssessmentStore").Return(assessments)

	svc, err := NewService(testTaxonomy(), mgr)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return svc
}

func TestNewService_MissingStores(t *testing.T) {
	mgr := &persist.MockStoreManager{}
	mgr.On("GetStateStore").Return(nil)
	_, err := NewService(testTaxonomy(), mgr)
	assert.ErrorContains(t, err, "state store")

	_, err = NewService(nil, mgr)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Create(CreateInput{RespondentName: " Ada ", City: "  Greater London ", Borough: "Camden"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, "Ada", rec.RespondentName)
	assert.Equal(t, "Greater London", rec.City)
	assert.Equal(t, "assessments_greater_london", rec.Collection)
	assert.Equal(t, schema.DraftStatus, rec.Status)

	got, state, err := svc.Show(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, 0, state.Ratings.Len())

	_, err = svc.Create(CreateInput{City: "   "})
	assert.ErrorIs(t, err, ErrCityRequired)
}

func TestEdits(t *testing.T) {
	svc := newTestService(t)
	rec, err := svc.Create(CreateInput{City: "Leeds"})
	require.NoError(t, err)

	require.NoError(t, svc.Rate(rec.ID, stepFree, 4))
	require.NoError(t, svc.Rate(rec.ID, shelters, 2))
	require.NoError(t, svc.Rate(rec.ID, stepFree, 5)) // re-rate keeps position
	require.NoError(t, svc.SetPriority(rec.ID, shelters, "a"))
	require.NoError(t, svc.SetMetricWeight(rec.ID, stepFree, 0))
	require.NoError(t, svc.SetKPIWeight(rec.ID, stepFree.KPIKey(), 75))

	after, state, err := svc.Show(rec.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(rec.UpdatedAt))
	assert.Equal(t, []schema.MetricKey{stepFree, shelters}, state.Ratings.Keys())
	assert.Equal(t, 5, state.EffectiveRating(stepFree))
	assert.Equal(t, schema.PriorityA, state.EffectivePriority(shelters, schema.PriorityB))
	w, ok := state.Weights.Metrics.Get(stepFree)
	require.True(t, ok, "explicit zero weight is stored")
	assert.Zero(t, w)
	kw, _ := state.Weights.KPIs.Get(stepFree.KPIKey())
	assert.InDelta(t, 75.0, kw, 1e-9)
}

func TestEdits_Rejected(t *testing.T) {
	svc := newTestService(t)
	rec, err := svc.Create(CreateInput{City: "Leeds"})
	require.NoError(t, err)

	unknown := schema.MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Teleporters"}
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"rating too low", svc.Rate(rec.ID, stepFree, 0), ErrInvalidRating},
		{"rating too high", svc.Rate(rec.ID, stepFree, 6), ErrInvalidRating},
		{"unknown metric", svc.Rate(rec.ID, unknown, 3), schema.ErrUnknownMetric},
		{"negative weight", svc.SetMetricWeight(rec.ID, stepFree, -1), ErrInvalidWeight},
		{"unknown KPI", svc.SetKPIWeight(rec.ID, schema.KPIKey{Dimension: "Mobility", KPI: "Ferries"}, 10), schema.ErrUnknownMetric},
		{"unknown assessment", svc.Rate("nope", stepFree, 3), persist.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
		})
	}

	assert.ErrorContains(t, svc.SetPriority(rec.ID, stepFree, "D"), "invalid priority")

	_, state, err := svc.Show(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Ratings.Len(), "rejected edits leave the state untouched")
}

func TestImport(t *testing.T) {
	svc := newTestService(t)
	rec, err := svc.Create(CreateInput{City: "Leeds"})
	require.NoError(t, err)

	t.Run("current format", func(t *testing.T) {
		doc := `{"version":1,
			"ratings":[{"dimension":"Mobility","kpi":"Transit","metric":"Bus shelters","value":3},
			           {"dimension":"Housing","kpi":"Adaptation","metric":"Grab rails","value":1}],
			"priorities":[{"dimension":"Housing","kpi":"Adaptation","metric":"Grab rails","value":"A"}]}`
		res, err := svc.Import(rec.ID, []byte(doc), false)
		require.NoError(t, err)
		assert.Equal(t, ImportResult{Ratings: 2, Priorities: 1}, res)

		_, state, err := svc.Show(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []schema.MetricKey{shelters, rails}, state.Ratings.Keys())
	})

	t.Run("legacy format skips unknown keys", func(t *testing.T) {
		doc := `{"ratings":{"Mobility||Streets||Benches":4,"Mobility||Streets||Lamps":2},
			"weights":{"kpis":{"Mobility||Streets":40}}}`
		res, err := svc.Import(rec.ID, []byte(doc), true)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Ratings)
		assert.Equal(t, 1, res.Weights)
		assert.Equal(t, []string{"Mobility||Streets||Lamps"}, res.Skipped)

		_, state, err := svc.Show(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []schema.MetricKey{benches}, state.Ratings.Keys(), "import replaces the previous state")
	})

	t.Run("unknown key in current format", func(t *testing.T) {
		doc := `{"ratings":[{"dimension":"Mobility","kpi":"Transit","metric":"Teleporters","value":3}]}`
		_, err := svc.Import(rec.ID, []byte(doc), false)
		assert.ErrorIs(t, err, schema.ErrUnknownMetric)
	})

	t.Run("out of range rating", func(t *testing.T) {
		doc := `{"ratings":[{"dimension":"Mobility","kpi":"Transit","metric":"Bus shelters","value":9}]}`
		_, err := svc.Import(rec.ID, []byte(doc), false)
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.Import(rec.ID, []byte(`{"ratings":`), false)
		assert.Error(t, err)
	})
}

func TestScoreRecordsHistory(t *testing.T) {
	obsCore, logs := observer.New(zap.InfoLevel)
	contract.SetLogger(zap.New(obsCore))
	t.Cleanup(func() { contract.SetLogger(nil) })

	svc := newTestService(t)
	rec, err := svc.Create(CreateInput{City: "Leeds"})
	require.NoError(t, err)
	require.NoError(t, svc.Rate(rec.ID, stepFree, 4))
	require.NoError(t, svc.Rate(rec.ID, shelters, 2))
	require.NoError(t, svc.SetPriority(rec.ID, rails, "A"))

	report, err := svc.Score(rec.ID, schema.DefaultEngineOptions())
	require.NoError(t, err)

	// Transit averages 3, Streets 0, so Mobility is 1.5; Housing is 0
	mobility, ok := report.Scores.Dimension("Mobility")
	require.True(t, ok)
	assert.InDelta(t, 1.5, mobility.Score, 1e-9)
	assert.InDelta(t, 0.75, report.Scores.Overall, 1e-9)
	assert.Equal(t, 50, report.Completion)
	require.Len(t, report.CriticalMetrics, 1)
	assert.Equal(t, rails, report.CriticalMetrics[0].Key)

	history, err := svc.History(rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 0.75, history[0].Overall, 1e-9)
	assert.Equal(t, int32(50), history[0].Completion)
	assert.Equal(t, int32(1), history[0].CriticalCount)
	assert.Equal(t, "Critical", history[0].Category)

	var stored schema.Scores
	require.NoError(t, json.Unmarshal([]byte(history[0].DimensionScores), &stored))
	assert.Equal(t, []string{"Mobility", "Housing"}, []string{stored.Dimensions[0].Name, stored.Dimensions[1].Name})

	scored := logs.FilterMessage("assessment scored").All()
	require.Len(t, scored, 1)
	assert.Equal(t, rec.ID, scored[0].ContextMap()["id"])

	// Report does not record
	_, err = svc.Report(rec.ID, schema.DefaultEngineOptions())
	require.NoError(t, err)
	history, err = svc.History(rec.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSubmit(t *testing.T) {
	svc := newTestService(t)
	rec, err := svc.Create(CreateInput{City: "Leeds"})
	require.NoError(t, err)

	submitted, err := svc.Submit(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.SubmittedStatus, submitted.Status)

	stored, _, err := svc.Show(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.SubmittedStatus, stored.Status)

	_, err = svc.Submit(rec.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	_, err = svc.Submit("missing")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestBatch(t *testing.T) {
	svc := newTestService(t)
	var ids []string
	for i, city := range []string{"Leeds", "York", "Leeds"} {
		rec, err := svc.Create(CreateInput{City: city})
		require.NoError(t, err)
		require.NoError(t, svc.Rate(rec.ID, stepFree, i+1))
		ids = append(ids, rec.ID)
	}

	entries, err := svc.Batch(context.Background(), schema.AssessmentFilter{}, schema.DefaultEngineOptions(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, ids[i], e.Assessment.ID, "results keep listing order")
	}
	assert.Less(t, entries[0].Report.Scores.Overall, entries[2].Report.Scores.Overall)

	leeds, err := svc.Batch(context.Background(), schema.AssessmentFilter{City: "leeds"}, schema.DefaultEngineOptions(), 2)
	require.NoError(t, err)
	assert.Len(t, leeds, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Batch(ctx, schema.AssessmentFilter{}, schema.DefaultEngineOptions(), 2)
	assert.ErrorIs(t, err, context.Canceled)

	// Batch evaluation never records scores
	history, err := svc.History(ids[0])
	require.NoError(t, err)
	assert.Empty(t, history)
}
