package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/safe/schema"
)

// Insight titles, in the order they are emitted.
const (
	StrongestInsight = "Strongest Dimension"
	WeakestInsight   = "Weakest Dimension"
	OverallInsight   = "Overall Performance"
)

// Insights produces the strongest, weakest and overall headlines.
// It returns an empty list when there are no dimensions.
func Insights(scores schema.Scores) []schema.Insight {
	if len(scores.Dimensions) == 0 {
		return []schema.Insight{}
	}

	sorted := make([]schema.DimensionScore, len(scores.Dimensions))
	copy(sorted, scores.Dimensions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	best, worst := sorted[0], sorted[len(sorted)-1]

	return []schema.Insight{
		{
			Title:       StrongestInsight,
			Description: fmt.Sprintf("%s is currently your strongest area with an average score of %s/5.", best.Name, fixed2(best.Score)),
		},
		{
			Title:       WeakestInsight,
			Description: fmt.Sprintf("%s is the lowest-performing dimension at %s/5. Prioritise targeted interventions here.", worst.Name, fixed2(worst.Score)),
		},
		{
			Title:       OverallInsight,
			Description: fmt.Sprintf("Your overall SAFE score is %s/5. Use this as a baseline and track improvements over time.", fixed2(scores.Overall)),
		},
	}
}

// fixed2 formats with two decimals, rounding exact halves up.
func fixed2(v float64) string {
	return fmt.Sprintf("%.2f", math.Round(v*100)/100)
}
