package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Weights holds explicit weight overrides, as percentages of the parent group.
type Weights struct {
	Metrics Overlay[MetricKey, float64]
	KPIs    Overlay[KPIKey, float64]
}

// AssessmentState is the sparse, user-editable overlay on a taxonomy.
// The scoring engine only reads it.
type AssessmentState struct {
	Ratings    Overlay[MetricKey, int]
	Priorities Overlay[MetricKey, Priority]
	Weights    Weights
}

// NewAssessmentState returns an empty state.
func NewAssessmentState() *AssessmentState {
	return &AssessmentState{}
}

// Clone returns a deep copy of the state.
func (s *AssessmentState) Clone() *AssessmentState {
	return &AssessmentState{
		Ratings:    s.Ratings.Clone(),
		Priorities: s.Priorities.Clone(),
		Weights: Weights{
			Metrics: s.Weights.Metrics.Clone(),
			KPIs:    s.Weights.KPIs.Clone(),
		},
	}
}

// IsRated reports whether key carries a non-zero rating.
// A stored zero does not count as rated.
func (s *AssessmentState) IsRated(key MetricKey) bool {
	v, ok := s.Ratings.Get(key)
	return ok && v != 0
}

// EffectiveRating is the rating used in score math; unrated is 0.
func (s *AssessmentState) EffectiveRating(key MetricKey) int {
	v, _ := s.Ratings.Get(key)
	return v
}

// DisplayRating is the rating a form pre-selects; unrated shows as 3.
func (s *AssessmentState) DisplayRating(key MetricKey) int {
	if !s.IsRated(key) {
		return UnsetDisplayRating
	}
	v, _ := s.Ratings.Get(key)
	return v
}

// EffectivePriority returns the override for key, or def when none is set.
func (s *AssessmentState) EffectivePriority(key MetricKey, def Priority) Priority {
	if p, ok := s.Priorities.Get(key); ok {
		return p
	}
	return def
}

// metricEntry and kpiEntry are the wire rows of a serialized state.
type metricEntry[V any] struct {
	Dimension string `json:"dimension"`
	KPI       string `json:"kpi"`
	Metric    string `json:"metric"`
	Value     V      `json:"value"`
}

type kpiEntry struct {
	Dimension string  `json:"dimension"`
	KPI       string  `json:"kpi"`
	Value     float64 `json:"value"`
}

type weightsWire struct {
	Metrics []metricEntry[float64] `json:"metrics"`
	KPIs    []kpiEntry             `json:"kpis"`
}

type stateWire struct {
	Version    int                     `json:"version"`
	Ratings    []metricEntry[int]      `json:"ratings"`
	Priorities []metricEntry[Priority] `json:"priorities"`
	Weights    *weightsWire            `json:"weights"`
}

func metricEntries[V any](o *Overlay[MetricKey, V]) []metricEntry[V] {
	out := make([]metricEntry[V], 0, o.Len())
	o.Each(func(k MetricKey, v V) {
		out = append(out, metricEntry[V]{Dimension: k.Dimension, KPI: k.KPI, Metric: k.Metric, Value: v})
	})
	return out
}

// MarshalJSON writes the state as ordered entry lists.
func (s AssessmentState) MarshalJSON() ([]byte, error) {
	w := stateWire{
		Version:    StateVersion,
		Ratings:    metricEntries(&s.Ratings),
		Priorities: metricEntries(&s.Priorities),
		Weights: &weightsWire{
			Metrics: metricEntries(&s.Weights.Metrics),
			KPIs:    make([]kpiEntry, 0, s.Weights.KPIs.Len()),
		},
	}
	s.Weights.KPIs.Each(func(k KPIKey, v float64) {
		w.Weights.KPIs = append(w.Weights.KPIs, kpiEntry{Dimension: k.Dimension, KPI: k.KPI, Value: v})
	})
	return json.Marshal(w)
}

// UnmarshalJSON reads the ordered entry list form. Missing sections decode as empty.
func (s *AssessmentState) UnmarshalJSON(data []byte) error {
	var w stateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Version != 0 && w.Version != StateVersion {
		return fmt.Errorf("unsupported state version %d (expected %d)", w.Version, StateVersion)
	}

	*s = AssessmentState{}
	for _, e := range w.Ratings {
		s.Ratings.Set(MetricKey{Dimension: e.Dimension, KPI: e.KPI, Metric: e.Metric}, e.Value)
	}
	for _, e := range w.Priorities {
		p, ok := ParsePriority(string(e.Value))
		if !ok {
			return fmt.Errorf("invalid priority %q for %s / %s / %s", e.Value, e.Dimension, e.KPI, e.Metric)
		}
		s.Priorities.Set(MetricKey{Dimension: e.Dimension, KPI: e.KPI, Metric: e.Metric}, p)
	}
	if w.Weights != nil {
		for _, e := range w.Weights.Metrics {
			s.Weights.Metrics.Set(MetricKey{Dimension: e.Dimension, KPI: e.KPI, Metric: e.Metric}, e.Value)
		}
		for _, e := range w.Weights.KPIs {
			s.Weights.KPIs.Set(KPIKey{Dimension: e.Dimension, KPI: e.KPI}, e.Value)
		}
	}
	return nil
}

// LegacySeparator joined the key parts in the browser-era storage format.
const LegacySeparator = "||"

// LegacyImport is the outcome of resolving a legacy state document.
type LegacyImport struct {
	State   *AssessmentState
	Unknown []string // joined keys that matched nothing in the taxonomy
}

// DecodeLegacyState reads the browser-era format, where keys were joined with
// "||". Keys are resolved by looking them up among the taxonomy's own joined
// keys, so names that contain the separator still resolve correctly.
func DecodeLegacyState(data []byte, tax *Taxonomy) (LegacyImport, error) {
	metricIndex := make(map[string]MetricKey, tax.MetricCount())
	kpiIndex := make(map[string]KPIKey, tax.KPICount())
	for _, k := range tax.MetricKeys() {
		metricIndex[k.Dimension+LegacySeparator+k.KPI+LegacySeparator+k.Metric] = k
	}
	for _, dim := range tax.Dimensions {
		for _, kpi := range dim.KPIs {
			kpiIndex[dim.Name+LegacySeparator+kpi.Name] = KPIKey{Dimension: dim.Name, KPI: kpi.Name}
		}
	}

	out := LegacyImport{State: NewAssessmentState()}
	st := out.State

	var top struct {
		Ratings    json.RawMessage `json:"ratings"`
		Priorities json.RawMessage `json:"priorities"`
		Weights    struct {
			KPIs    json.RawMessage `json:"kpis"`
			Metrics json.RawMessage `json:"metrics"`
		} `json:"weights"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return out, fmt.Errorf("invalid legacy state: %w", err)
	}

	lookupMetric := func(joined string) (MetricKey, bool) {
		k, ok := metricIndex[joined]
		if !ok {
			out.Unknown = append(out.Unknown, joined)
		}
		return k, ok
	}

	err := eachOrderedField(top.Ratings, func(joined string, raw json.RawMessage) error {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("rating for %q: %w", joined, err)
		}
		if k, ok := lookupMetric(joined); ok && v != nil {
			st.Ratings.Set(k, int(*v))
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	err = eachOrderedField(top.Priorities, func(joined string, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("priority for %q: %w", joined, err)
		}
		p, valid := ParsePriority(v)
		if !valid {
			return fmt.Errorf("invalid priority %q for %q", v, joined)
		}
		if k, ok := lookupMetric(joined); ok {
			st.Priorities.Set(k, p)
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	err = eachOrderedField(top.Weights.Metrics, func(joined string, raw json.RawMessage) error {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("metric weight for %q: %w", joined, err)
		}
		if k, ok := lookupMetric(joined); ok && v != nil {
			st.Weights.Metrics.Set(k, *v)
		}
		return nil
	})
	if err != nil {
		return out, err
	}

	err = eachOrderedField(top.Weights.KPIs, func(joined string, raw json.RawMessage) error {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("KPI weight for %q: %w", joined, err)
		}
		k, ok := kpiIndex[joined]
		if !ok {
			out.Unknown = append(out.Unknown, joined)
			return nil
		}
		if v != nil {
			st.Weights.KPIs.Set(k, *v)
		}
		return nil
	})
	return out, err
}

// eachOrderedField walks a JSON object in document order.
// A missing or null object is treated as empty.
func eachOrderedField(raw json.RawMessage, fn func(string, json.RawMessage) error) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}
