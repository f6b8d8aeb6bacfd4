package core

import (
	"github.com/huangsam/safe/core/algo"
	"github.com/huangsam/safe/schema"
)

// Evaluate runs every engine component over one snapshot.
func Evaluate(tax *schema.Taxonomy, state *schema.AssessmentState, opts schema.EngineOptions) schema.Report {
	scores := Score(tax, state)
	categorize := func(s float64) schema.Category {
		return Categorize(s, opts.Naming)
	}

	policy := opts.CompletionPolicy
	if _, ok := schema.ValidCompletionPolicies[policy]; !ok {
		policy = schema.SimpleCompletion
	}

	return schema.Report{
		Scores:           scores,
		Completion:       CompletionFor(policy, tax, state),
		CompletionPolicy: policy,
		RatedMetrics:     CountRated(tax, state),
		AssessedMetrics:  CountAssessed(tax, state),
		TotalMetrics:     tax.MetricCount(),
		Category:         categorize(scores.Overall),
		CriticalMetrics:  CriticalMetrics(state, opts.CriticalPolicy),
		Insights:         Insights(scores),
		Ranking:          algo.RankDimensions(scores.Dimensions, categorize),
		Stats:            algo.Describe(scores.Dimensions),
	}
}
