package core

import (
	"testing"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criticalKeys(cms []schema.CriticalMetric) []string {
	out := make([]string, len(cms))
	for i, c := range cms {
		out[i] = c.Metric
	}
	return out
}

func TestCriticalMetricsOrdering(t *testing.T) {
	st := schema.NewAssessmentState()
	a := mk("D", "K", "a")
	b := mk("D", "K", "b")
	c := mk("D", "K", "c")
	d := mk("D", "K", "d")
	e := mk("D", "K", "e")

	st.Priorities.Set(c, schema.PriorityA)
	st.Priorities.Set(a, schema.PriorityA)
	st.Priorities.Set(e, schema.PriorityB)
	st.Priorities.Set(b, schema.PriorityA)
	st.Priorities.Set(d, schema.PriorityA)
	st.Ratings.Set(c, 3)
	st.Ratings.Set(a, 3)
	st.Ratings.Set(b, 1)
	st.Ratings.Set(e, 1)

	got := CriticalMetrics(st, schema.FullCritical)
	assert.Equal(t, []string{"d", "b", "c", "a"}, criticalKeys(got))
	assert.Equal(t, 0, got[0].Rating, "unrated counts as 0")
	assert.Equal(t, d, got[0].Key)
	assert.Equal(t, "D", got[0].Dimension)
	assert.Equal(t, "K", got[0].KPI)
}

func TestCriticalMetricsOnlyExplicitOverrides(t *testing.T) {
	// Every metric in the taxonomy defaults to A but none was set explicitly.
	st := schema.NewAssessmentState()
	st.Ratings.Set(m1, 1)
	got := CriticalMetrics(st, schema.FullCritical)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCriticalMetricsBottomDecile(t *testing.T) {
	st := schema.NewAssessmentState()
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		key := mk("D", "K", name)
		st.Priorities.Set(key, schema.PriorityA)
		st.Ratings.Set(key, 5-(i%5))
	}

	full := CriticalMetrics(st, schema.FullCritical)
	require.Len(t, full, 11)

	got := CriticalMetrics(st, schema.BottomDecileCritical)
	require.Len(t, got, 2) // ceil(1.1)
	assert.Equal(t, full[:2], got)
	assert.Equal(t, []string{"e", "j"}, criticalKeys(got))
}

func TestBottomDecile(t *testing.T) {
	assert.Equal(t, 0, bottomDecile(0))
	assert.Equal(t, 1, bottomDecile(1))
	assert.Equal(t, 1, bottomDecile(10))
	assert.Equal(t, 2, bottomDecile(11))
	assert.Equal(t, 35, bottomDecile(350))
}
