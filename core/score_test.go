package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEqualShare(t *testing.T) {
	tax := twoMetricTaxonomy()
	st := schema.NewAssessmentState()
	st.Ratings.Set(m1, 4)
	st.Ratings.Set(m2, 2)

	got := Score(tax, st)
	want := schema.Scores{
		Overall: 3,
		Dimensions: []schema.DimensionScore{
			{Name: "D", Score: 3, KPIs: []schema.KPIScore{{Name: "K", Average: 3, Weight: 100}}},
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Score() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 100, Completion(tax, st))
}

func TestScoreUnratedPullsAverageDown(t *testing.T) {
	tax := twoMetricTaxonomy()
	st := schema.NewAssessmentState()
	st.Ratings.Set(m1, 5)

	got := Score(tax, st)
	require.Len(t, got.Dimensions, 1)
	assert.InDelta(t, 2.5, got.Dimensions[0].KPIs[0].Average, 1e-9)
	assert.InDelta(t, 2.5, got.Dimensions[0].Score, 1e-9)
	assert.InDelta(t, 2.5, got.Overall, 1e-9)
	assert.Equal(t, 50, Completion(tax, st))
}

func TestScoreZeroWeightExcludesMetric(t *testing.T) {
	tax := twoMetricTaxonomy()
	st := schema.NewAssessmentState()
	st.Ratings.Set(m1, 5)
	st.Ratings.Set(m2, 1)

	equal := Score(tax, st)
	assert.InDelta(t, 3.0, equal.Overall, 1e-9)

	st.Weights.Metrics.Set(m2, 0)
	st.Weights.Metrics.Set(m1, 50)
	excluded := Score(tax, st)
	assert.InDelta(t, 5.0, excluded.Overall, 1e-9)
}

func TestScoreAllWeightsZero(t *testing.T) {
	tax := twoMetricTaxonomy()
	st := schema.NewAssessmentState()
	st.Ratings.Set(m1, 5)
	st.Weights.Metrics.Set(m1, 0)
	st.Weights.Metrics.Set(m2, 0)

	got := Score(tax, st)
	assert.Equal(t, 0.0, got.Dimensions[0].KPIs[0].Average)
	assert.Equal(t, 0.0, got.Overall)

	st = schema.NewAssessmentState()
	st.Ratings.Set(m1, 5)
	st.Weights.KPIs.Set(schema.KPIKey{Dimension: "D", KPI: "K"}, 0)
	got = Score(tax, st)
	assert.Equal(t, 0.0, got.Dimensions[0].Score)
}

func TestScoreScaleInvariance(t *testing.T) {
	tax := wideTaxonomy()
	base := schema.NewAssessmentState()
	base.Ratings.Set(mk("Mobility", "Transit", "Step-free"), 5)
	base.Ratings.Set(mk("Mobility", "Transit", "Shelters"), 2)
	base.Ratings.Set(mk("Mobility", "Transit", "Seating"), 3)
	base.Weights.Metrics.Set(mk("Mobility", "Transit", "Step-free"), 50)
	base.Weights.Metrics.Set(mk("Mobility", "Transit", "Shelters"), 30)
	base.Weights.Metrics.Set(mk("Mobility", "Transit", "Seating"), 20)

	scaled := base.Clone()
	scaled.Weights.Metrics.Each(func(k schema.MetricKey, w float64) {
		scaled.Weights.Metrics.Set(k, w*7.5)
	})

	a := Score(tax, base).Dimensions[0].KPIs[0].Average
	b := Score(tax, scaled).Dimensions[0].KPIs[0].Average
	assert.InDelta(t, 3.7, a, 1e-9)
	assert.InDelta(t, a, b, 1e-9)
}

func TestScoreWeightsNeedNotSumTo100(t *testing.T) {
	tax := wideTaxonomy()
	st := schema.NewAssessmentState()
	st.Ratings.Set(mk("Mobility", "Streets", "Crossings"), 4)
	st.Ratings.Set(mk("Mobility", "Transit", "Step-free"), 1)
	st.Ratings.Set(mk("Mobility", "Transit", "Shelters"), 1)
	st.Ratings.Set(mk("Mobility", "Transit", "Seating"), 1)
	st.Weights.KPIs.Set(schema.KPIKey{Dimension: "Mobility", KPI: "Transit"}, 10)
	st.Weights.KPIs.Set(schema.KPIKey{Dimension: "Mobility", KPI: "Streets"}, 30)

	got := Score(tax, st)
	mobility, ok := got.Dimension("Mobility")
	require.True(t, ok)
	assert.InDelta(t, (1*10.0+4*30.0)/40.0, mobility.Score, 1e-9)
}

func TestScoreKeepsTaxonomyOrder(t *testing.T) {
	got := Score(wideTaxonomy(), schema.NewAssessmentState())
	require.Len(t, got.Dimensions, 2)
	assert.Equal(t, "Mobility", got.Dimensions[0].Name)
	assert.Equal(t, "Housing", got.Dimensions[1].Name)
	assert.Equal(t, 0.0, got.Overall)
}

func TestScoreNoDimensions(t *testing.T) {
	got := Score(&schema.Taxonomy{}, schema.NewAssessmentState())
	assert.Empty(t, got.Dimensions)
	assert.Equal(t, 0.0, got.Overall)
}

func TestCountAssessed(t *testing.T) {
	tax := wideTaxonomy()
	st := schema.NewAssessmentState()
	assert.Equal(t, 6, CountAssessed(tax, st))

	st.Weights.Metrics.Set(mk("Housing", "Adaptation", "Ramps"), 0)
	st.Weights.Metrics.Set(mk("Housing", "Adaptation", "Grab rails"), 100)
	assert.Equal(t, 5, CountAssessed(tax, st))
}
