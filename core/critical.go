package core

import (
	"math"
	"sort"

	"github.com/huangsam/safe/schema"
)

// CriticalMetrics lists metrics whose priority was explicitly set to A,
// lowest rating first. Ties keep the order in which priorities were set.
// Taxonomy defaults are not consulted.
func CriticalMetrics(state *schema.AssessmentState, policy schema.CriticalPolicy) []schema.CriticalMetric {
	out := make([]schema.CriticalMetric, 0)
	state.Priorities.Each(func(key schema.MetricKey, p schema.Priority) {
		if p != schema.PriorityA {
			return
		}
		out = append(out, schema.CriticalMetric{
			Key:       key,
			Dimension: key.Dimension,
			KPI:       key.KPI,
			Metric:    key.Metric,
			Rating:    state.EffectiveRating(key),
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating < out[j].Rating
	})
	if policy == schema.BottomDecileCritical {
		out = out[:bottomDecile(len(out))]
	}
	return out
}

// bottomDecile is ceil(10% of n).
func bottomDecile(n int) int {
	return int(math.Ceil(float64(n) * 0.1))
}
