package core

import "github.com/huangsam/safe/schema"

// Score computes weighted scores for every dimension and their mean.
//
// A KPI theme's average is Σ(rating×weight)/Σweight over its metrics, unrated
// metrics contributing 0 at their full weight. A dimension is the
// KPI-weighted average of its themes. Zero weight sums yield 0.
func Score(tax *schema.Taxonomy, state *schema.AssessmentState) schema.Scores {
	out := schema.Scores{Dimensions: make([]schema.DimensionScore, 0, len(tax.Dimensions))}
	total := 0.0
	for _, dim := range tax.Dimensions {
		ds := scoreDimension(dim, state)
		total += ds.Score
		out.Dimensions = append(out.Dimensions, ds)
	}
	if len(out.Dimensions) > 0 {
		out.Overall = total / float64(len(out.Dimensions))
	}
	return out
}

func scoreDimension(dim schema.Dimension, state *schema.AssessmentState) schema.DimensionScore {
	ds := schema.DimensionScore{Name: dim.Name, KPIs: make([]schema.KPIScore, 0, len(dim.KPIs))}
	var weighted, weights float64
	for _, kpi := range dim.KPIs {
		avg := kpiAverage(dim.Name, kpi, state)
		w := kpiWeight(state, schema.KPIKey{Dimension: dim.Name, KPI: kpi.Name}, len(dim.KPIs))
		weighted += avg * w
		weights += w
		ds.KPIs = append(ds.KPIs, schema.KPIScore{Name: kpi.Name, Average: avg, Weight: w})
	}
	if weights != 0 {
		ds.Score = weighted / weights
	}
	return ds
}

func kpiAverage(dimName string, kpi schema.KPITheme, state *schema.AssessmentState) float64 {
	var weighted, weights float64
	for _, m := range kpi.Metrics {
		key := schema.MetricKey{Dimension: dimName, KPI: kpi.Name, Metric: m.Name}
		w := metricWeight(state, key, len(kpi.Metrics))
		weighted += float64(state.EffectiveRating(key)) * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights
}

// CountAssessed counts metrics whose effective weight is positive. Only
// explicit zero (or negative) weights reduce it below the metric count.
func CountAssessed(tax *schema.Taxonomy, state *schema.AssessmentState) int {
	n := 0
	for _, dim := range tax.Dimensions {
		for _, kpi := range dim.KPIs {
			for _, m := range kpi.Metrics {
				key := schema.MetricKey{Dimension: dim.Name, KPI: kpi.Name, Metric: m.Name}
				if metricWeight(state, key, len(kpi.Metrics)) > 0 {
					n++
				}
			}
		}
	}
	return n
}
