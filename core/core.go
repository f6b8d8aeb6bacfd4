// Package core has the SAFE scoring engine: completion, weighted scores,
// critical metrics, categories and insights.
//
// Every function here is pure. It reads a taxonomy and an assessment state
// snapshot, allocates fresh results and never fails: divisions by a zero
// weight sum fall back to 0 and absent entries fall back to their defaults.
package core

import (
	"math"

	"github.com/huangsam/safe/schema"
)

// equalShare is the implicit weight of one of n siblings.
func equalShare(n int) float64 {
	if n == 0 {
		return 0
	}
	return 100 / float64(n)
}

// metricWeight returns the explicit weight of key, or its equal share among n metrics.
func metricWeight(state *schema.AssessmentState, key schema.MetricKey, n int) float64 {
	if w, ok := state.Weights.Metrics.Get(key); ok {
		return w
	}
	return equalShare(n)
}

// kpiWeight returns the explicit weight of key, or its equal share among n KPI themes.
func kpiWeight(state *schema.AssessmentState, key schema.KPIKey, n int) float64 {
	if w, ok := state.Weights.KPIs.Get(key); ok {
		return w
	}
	return equalShare(n)
}

// percent rounds done/total to a whole percentage in [0,100].
func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	return max(0, min(p, 100))
}
