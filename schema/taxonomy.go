package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMetric is returned when a key does not resolve against the taxonomy.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricKey is the canonical identity of a metric.
type MetricKey struct {
	Dimension string `json:"dimension"`
	KPI       string `json:"kpi"`
	Metric    string `json:"metric"`
}

// KPIKey is the canonical identity of a KPI theme.
type KPIKey struct {
	Dimension string `json:"dimension"`
	KPI       string `json:"kpi"`
}

// KPIKey returns the key of the KPI theme that owns the metric.
func (k MetricKey) KPIKey() KPIKey {
	return KPIKey{Dimension: k.Dimension, KPI: k.KPI}
}

// String renders the key for humans. It is never parsed back.
func (k MetricKey) String() string {
	return k.Dimension + " / " + k.KPI + " / " + k.Metric
}

// String renders the key for humans. It is never parsed back.
func (k KPIKey) String() string {
	return k.Dimension + " / " + k.KPI
}

// Metric is a single measurable indicator.
type Metric struct {
	Name     string   `json:"name" yaml:"name"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// KPITheme groups metrics within a dimension.
type KPITheme struct {
	Name    string   `json:"name" yaml:"name"`
	Metrics []Metric `json:"metrics" yaml:"metrics"`
}

// Dimension is the top-level grouping of KPI themes.
type Dimension struct {
	Name string     `json:"name" yaml:"name"`
	KPIs []KPITheme `json:"kpis" yaml:"kpis"`
}

// Taxonomy is the immutable Dimension -> KPI theme -> Metric tree.
type Taxonomy struct {
	Version    int         `json:"version" yaml:"version"`
	Dimensions []Dimension `json:"dimensions" yaml:"dimensions"`
}

// Validate ensures the taxonomy is well-formed: every group is non-empty,
// names are unique at their level and priorities are known.
func (t *Taxonomy) Validate() error {
	if len(t.Dimensions) == 0 {
		return errors.New("taxonomy has no dimensions")
	}
	dims := make(map[string]struct{}, len(t.Dimensions))
	for _, dim := range t.Dimensions {
		if strings.TrimSpace(dim.Name) == "" {
			return errors.New("dimension name cannot be empty")
		}
		if _, dup := dims[dim.Name]; dup {
			return fmt.Errorf("duplicate dimension %q", dim.Name)
		}
		dims[dim.Name] = struct{}{}
		if len(dim.KPIs) == 0 {
			return fmt.Errorf("dimension %q has no KPI themes", dim.Name)
		}

		kpis := make(map[string]struct{}, len(dim.KPIs))
		for _, kpi := range dim.KPIs {
			if strings.TrimSpace(kpi.Name) == "" {
				return fmt.Errorf("dimension %q has a KPI theme with an empty name", dim.Name)
			}
			if _, dup := kpis[kpi.Name]; dup {
				return fmt.Errorf("duplicate KPI theme %q in dimension %q", kpi.Name, dim.Name)
			}
			kpis[kpi.Name] = struct{}{}
			if len(kpi.Metrics) == 0 {
				return fmt.Errorf("KPI theme %q in dimension %q has no metrics", kpi.Name, dim.Name)
			}

			metrics := make(map[string]struct{}, len(kpi.Metrics))
			for _, m := range kpi.Metrics {
				if strings.TrimSpace(m.Name) == "" {
					return fmt.Errorf("KPI theme %q in dimension %q has a metric with an empty name", kpi.Name, dim.Name)
				}
				if _, dup := metrics[m.Name]; dup {
					return fmt.Errorf("duplicate metric %q in %s / %s", m.Name, dim.Name, kpi.Name)
				}
				metrics[m.Name] = struct{}{}
				if _, ok := ValidPriorities[m.Priority]; !ok {
					return fmt.Errorf("metric %q in %s / %s has invalid priority %q", m.Name, dim.Name, kpi.Name, m.Priority)
				}
			}
		}
	}
	return nil
}

// MetricCount returns the number of metrics in the taxonomy.
func (t *Taxonomy) MetricCount() int {
	n := 0
	for _, dim := range t.Dimensions {
		for _, kpi := range dim.KPIs {
			n += len(kpi.Metrics)
		}
	}
	return n
}

// KPICount returns the number of KPI themes in the taxonomy.
func (t *Taxonomy) KPICount() int {
	n := 0
	for _, dim := range t.Dimensions {
		n += len(dim.KPIs)
	}
	return n
}

// MetricKeys enumerates every metric key in taxonomy order.
func (t *Taxonomy) MetricKeys() []MetricKey {
	keys := make([]MetricKey, 0, t.MetricCount())
	for _, dim := range t.Dimensions {
		for _, kpi := range dim.KPIs {
			for _, m := range kpi.Metrics {
				keys = append(keys, MetricKey{Dimension: dim.Name, KPI: kpi.Name, Metric: m.Name})
			}
		}
	}
	return keys
}

// FindKPI returns the KPI theme identified by key.
func (t *Taxonomy) FindKPI(key KPIKey) (*KPITheme, bool) {
	for i := range t.Dimensions {
		dim := &t.Dimensions[i]
		if dim.Name != key.Dimension {
			continue
		}
		for j := range dim.KPIs {
			if dim.KPIs[j].Name == key.KPI {
				return &dim.KPIs[j], true
			}
		}
		return nil, false
	}
	return nil, false
}

// FindMetric returns the metric identified by key.
func (t *Taxonomy) FindMetric(key MetricKey) (Metric, bool) {
	kpi, ok := t.FindKPI(key.KPIKey())
	if !ok {
		return Metric{}, false
	}
	for _, m := range kpi.Metrics {
		if m.Name == key.Metric {
			return m, true
		}
	}
	return Metric{}, false
}

// ResolveMetric returns ErrUnknownMetric when key is not part of the taxonomy.
func (t *Taxonomy) ResolveMetric(key MetricKey) (Metric, error) {
	m, ok := t.FindMetric(key)
	if !ok {
		return Metric{}, fmt.Errorf("%w: %s", ErrUnknownMetric, key)
	}
	return m, nil
}

// ResolveKPI returns ErrUnknownMetric when key is not part of the taxonomy.
func (t *Taxonomy) ResolveKPI(key KPIKey) error {
	if _, ok := t.FindKPI(key); !ok {
		return fmt.Errorf("%w: KPI theme %s", ErrUnknownMetric, key)
	}
	return nil
}
