package core

import (
	"testing"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		score  float64
		naming schema.NamingScheme
		label  string
		class  string
		level  schema.CategoryLevel
	}{
		{4.6, schema.StandardNaming, "Excellent", "badge-excellent", schema.ExcellentLevel},
		{4.5, schema.StandardNaming, "Excellent", "badge-excellent", schema.ExcellentLevel},
		{4.49, schema.StandardNaming, "Good", "badge-good", schema.GoodLevel},
		{3.5, schema.StandardNaming, "Good", "badge-good", schema.GoodLevel},
		{2.5, schema.StandardNaming, "Needs Improvement", "badge-warning", schema.NeedsImprovementLevel},
		{2.49, schema.StandardNaming, "Critical", "badge-critical", schema.CriticalLevel},
		{0, schema.StandardNaming, "Critical", "badge-critical", schema.CriticalLevel},
		{4.49, schema.MedalNaming, "Gold", "badge-good", schema.GoodLevel},
		{2.5, schema.MedalNaming, "Bronze", "badge-warning", schema.NeedsImprovementLevel},
		{5, schema.MedalNaming, "Excellent", "badge-excellent", schema.ExcellentLevel},
		{3.6, "unknown", "Good", "badge-good", schema.GoodLevel},
	}

	for _, tt := range tests {
		got := Categorize(tt.score, tt.naming)
		assert.Equal(t, tt.label, got.Label, "score %v naming %s", tt.score, tt.naming)
		assert.Equal(t, tt.class, got.StyleClass)
		assert.Equal(t, tt.level, got.Level)
	}
}

func TestCategorizeNamingsShareThresholds(t *testing.T) {
	for s := 0.0; s <= 5.0; s += 0.05 {
		std := Categorize(s, schema.StandardNaming)
		medal := Categorize(s, schema.MedalNaming)
		assert.Equal(t, std.Level, medal.Level, "score %v", s)
		assert.Equal(t, std.StyleClass, medal.StyleClass)
	}
}
