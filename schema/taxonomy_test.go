package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTaxonomy() *Taxonomy {
	return &Taxonomy{
		Version: 1,
		Dimensions: []Dimension{
			{Name: "Mobility", KPIs: []KPITheme{
				{Name: "Transit", Metrics: []Metric{{Name: "Step-free stations", Priority: PriorityA}, {Name: "Bus shelters", Priority: PriorityB}}},
				{Name: "Streets", Metrics: []Metric{{Name: "Benches", Priority: PriorityC}}},
			}},
			{Name: "Housing", KPIs: []KPITheme{
				{Name: "Adaptation", Metrics: []Metric{{Name: "Grab rails", Priority: PriorityA}}},
			}},
		},
	}
}

func TestTaxonomyValidate(t *testing.T) {
	require.NoError(t, sampleTaxonomy().Validate())

	tests := []struct {
		name   string
		mutate func(*Taxonomy)
		errMsg string
	}{
		{"no dimensions", func(tx *Taxonomy) { tx.Dimensions = nil }, "no dimensions"},
		{"empty dimension name", func(tx *Taxonomy) { tx.Dimensions[0].Name = " " }, "dimension name cannot be empty"},
		{"duplicate dimension", func(tx *Taxonomy) { tx.Dimensions[1].Name = "Mobility" }, "duplicate dimension"},
		{"empty KPI list", func(tx *Taxonomy) { tx.Dimensions[1].KPIs = nil }, "has no KPI themes"},
		{"duplicate KPI", func(tx *Taxonomy) { tx.Dimensions[0].KPIs[1].Name = "Transit" }, "duplicate KPI theme"},
		{"empty metric list", func(tx *Taxonomy) { tx.Dimensions[0].KPIs[1].Metrics = nil }, "has no metrics"},
		{"duplicate metric", func(tx *Taxonomy) { tx.Dimensions[0].KPIs[0].Metrics[1].Name = "Step-free stations" }, "duplicate metric"},
		{"bad priority", func(tx *Taxonomy) { tx.Dimensions[0].KPIs[0].Metrics[0].Priority = "Z" }, "invalid priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := sampleTaxonomy()
			tt.mutate(tx)
			err := tx.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTaxonomyCountsAndKeys(t *testing.T) {
	tx := sampleTaxonomy()
	assert.Equal(t, 4, tx.MetricCount())
	assert.Equal(t, 3, tx.KPICount())

	keys := tx.MetricKeys()
	require.Len(t, keys, 4)
	assert.Equal(t, MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Step-free stations"}, keys[0])
	assert.Equal(t, MetricKey{Dimension: "Housing", KPI: "Adaptation", Metric: "Grab rails"}, keys[3])
}

func TestTaxonomyResolve(t *testing.T) {
	tx := sampleTaxonomy()

	m, err := tx.ResolveMetric(MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Bus shelters"})
	require.NoError(t, err)
	assert.Equal(t, PriorityB, m.Priority)

	_, err = tx.ResolveMetric(MetricKey{Dimension: "Mobility", KPI: "Transit", Metric: "Trams"})
	assert.True(t, errors.Is(err, ErrUnknownMetric))

	assert.NoError(t, tx.ResolveKPI(KPIKey{Dimension: "Housing", KPI: "Adaptation"}))
	assert.ErrorIs(t, tx.ResolveKPI(KPIKey{Dimension: "Housing", KPI: "Transit"}), ErrUnknownMetric)
}

func TestMetricKeyString(t *testing.T) {
	k := MetricKey{Dimension: "a||b", KPI: "c", Metric: "d"}
	assert.Equal(t, "a||b / c / d", k.String())
	assert.Equal(t, KPIKey{Dimension: "a||b", KPI: "c"}, k.KPIKey())
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority(" b ")
	assert.True(t, ok)
	assert.Equal(t, PriorityB, p)

	_, ok = ParsePriority("D")
	assert.False(t, ok)
}
