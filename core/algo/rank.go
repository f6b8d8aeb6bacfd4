// Package algo has ranking and summary statistics over dimension scores.
package algo

import (
	"sort"

	"github.com/huangsam/safe/schema"
	"github.com/montanaflynn/stats"
)

// RankDimensions sorts dimensions by score in descending order and assigns
// 1-based ranks. Equal scores keep taxonomy order. The input is not modified.
func RankDimensions(dims []schema.DimensionScore, categorize func(float64) schema.Category) []schema.DimensionRank {
	sorted := make([]schema.DimensionScore, len(dims))
	copy(sorted, dims)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make([]schema.DimensionRank, len(sorted))
	for i, d := range sorted {
		out[i] = schema.DimensionRank{Rank: i + 1, Name: d.Name, Score: d.Score}
		if categorize != nil {
			out[i].Category = categorize(d.Score)
		}
	}
	return out
}

// Top returns the first limit ranks. A non-positive limit returns all of them.
func Top(ranks []schema.DimensionRank, limit int) []schema.DimensionRank {
	if limit <= 0 || len(ranks) <= limit {
		return ranks
	}
	return ranks[:limit]
}

// Bottom returns the last limit ranks, worst last.
func Bottom(ranks []schema.DimensionRank, limit int) []schema.DimensionRank {
	if limit <= 0 || len(ranks) <= limit {
		return ranks
	}
	return ranks[len(ranks)-limit:]
}

// Describe computes descriptive statistics over dimension scores.
// An empty input yields zero statistics.
func Describe(dims []schema.DimensionScore) schema.ScoreStats {
	if len(dims) == 0 {
		return schema.ScoreStats{}
	}
	data := make(stats.Float64Data, len(dims))
	for i, d := range dims {
		data[i] = d.Score
	}

	// Errors only arise from empty input, which is handled above.
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	return schema.ScoreStats{Mean: mean, Median: median, StdDev: stdDev, Min: lo, Max: hi}
}
