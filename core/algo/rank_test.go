package algo

import (
	"testing"

	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dims() []schema.DimensionScore {
	return []schema.DimensionScore{
		{Name: "Mobility", Score: 2},
		{Name: "Housing", Score: 4},
		{Name: "Health", Score: 2},
		{Name: "Civic", Score: 3},
	}
}

func TestRankDimensions(t *testing.T) {
	in := dims()
	ranks := RankDimensions(in, func(s float64) schema.Category {
		if s >= 3 {
			return schema.Category{Label: "ok"}
		}
		return schema.Category{Label: "low"}
	})

	require.Len(t, ranks, 4)
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.Name
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"Housing", "Civic", "Mobility", "Health"}, names)
	assert.Equal(t, "ok", ranks[0].Category.Label)
	assert.Equal(t, "low", ranks[3].Category.Label)
	assert.Equal(t, "Mobility", in[0].Name, "input must not be reordered")
}

func TestRankDimensionsWithoutCategorizer(t *testing.T) {
	ranks := RankDimensions(dims(), nil)
	assert.Empty(t, ranks[0].Category.Label)
	assert.Empty(t, RankDimensions(nil, nil))
}

func TestTopAndBottom(t *testing.T) {
	ranks := RankDimensions(dims(), nil)

	assert.Len(t, Top(ranks, 2), 2)
	assert.Equal(t, "Housing", Top(ranks, 2)[0].Name)
	assert.Len(t, Top(ranks, 0), 4)
	assert.Len(t, Top(ranks, 10), 4)

	bottom := Bottom(ranks, 1)
	require.Len(t, bottom, 1)
	assert.Equal(t, "Health", bottom[0].Name)
	assert.Len(t, Bottom(ranks, -1), 4)
}

func TestDescribe(t *testing.T) {
	st := Describe(dims())
	assert.InDelta(t, 2.75, st.Mean, 1e-9)
	assert.InDelta(t, 2.5, st.Median, 1e-9)
	assert.InDelta(t, 0.8291561975888499, st.StdDev, 1e-9)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 4.0, st.Max)

	assert.Equal(t, schema.ScoreStats{}, Describe(nil))
}
