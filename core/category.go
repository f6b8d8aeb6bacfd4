package core

import "github.com/huangsam/safe/schema"

// categoryBands are evaluated top-down; the first floor the score reaches wins.
var categoryBands = []struct {
	floor float64
	level schema.CategoryLevel
	class string
}{
	{4.5, schema.ExcellentLevel, "badge-excellent"},
	{3.5, schema.GoodLevel, "badge-good"},
	{2.5, schema.NeedsImprovementLevel, "badge-warning"},
}

var categoryLabels = map[schema.NamingScheme]map[schema.CategoryLevel]string{
	schema.StandardNaming: {
		schema.ExcellentLevel:        "Excellent",
		schema.GoodLevel:             "Good",
		schema.NeedsImprovementLevel: "Needs Improvement",
		schema.CriticalLevel:         "Critical",
	},
	schema.MedalNaming: {
		schema.ExcellentLevel:        "Excellent",
		schema.GoodLevel:             "Gold",
		schema.NeedsImprovementLevel: "Bronze",
		schema.CriticalLevel:         "Critical",
	},
}

// Categorize maps an overall score to its performance band.
// Unknown naming schemes fall back to the standard labels.
func Categorize(score float64, naming schema.NamingScheme) schema.Category {
	labels, ok := categoryLabels[naming]
	if !ok {
		labels = categoryLabels[schema.StandardNaming]
	}
	for _, band := range categoryBands {
		if score >= band.floor {
			return schema.Category{Label: labels[band.level], StyleClass: band.class, Level: band.level}
		}
	}
	return schema.Category{Label: labels[schema.CriticalLevel], StyleClass: "badge-critical", Level: schema.CriticalLevel}
}
