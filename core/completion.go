package core

import "github.com/huangsam/safe/schema"

// Completion is the share of taxonomy metrics carrying a non-zero rating.
func Completion(tax *schema.Taxonomy, state *schema.AssessmentState) int {
	return percent(CountRated(tax, state), tax.MetricCount())
}

// CountRated counts taxonomy metrics carrying a non-zero rating.
func CountRated(tax *schema.Taxonomy, state *schema.AssessmentState) int {
	rated := 0
	for _, key := range tax.MetricKeys() {
		if state.IsRated(key) {
			rated++
		}
	}
	return rated
}

// FieldCompletion measures completion over individual form fields: three per
// metric (rating, priority, positive metric weight) and one per KPI theme
// (positive KPI weight).
func FieldCompletion(tax *schema.Taxonomy, state *schema.AssessmentState) int {
	total, done := 0, 0
	for _, dim := range tax.Dimensions {
		for _, kpi := range dim.KPIs {
			kpiKey := schema.KPIKey{Dimension: dim.Name, KPI: kpi.Name}
			total++
			if w, ok := state.Weights.KPIs.Get(kpiKey); ok && w > 0 {
				done++
			}
			for _, m := range kpi.Metrics {
				key := schema.MetricKey{Dimension: dim.Name, KPI: kpi.Name, Metric: m.Name}
				total += 3
				if state.IsRated(key) {
					done++
				}
				if _, ok := state.Priorities.Get(key); ok {
					done++
				}
				if w, ok := state.Weights.Metrics.Get(key); ok && w > 0 {
					done++
				}
			}
		}
	}
	return percent(done, total)
}

// CompletionFor dispatches on policy. Unknown policies use the simple count.
func CompletionFor(policy schema.CompletionPolicy, tax *schema.Taxonomy, state *schema.AssessmentState) int {
	if policy == schema.FieldWeightedCompletion {
		return FieldCompletion(tax, state)
	}
	return Completion(tax, state)
}
