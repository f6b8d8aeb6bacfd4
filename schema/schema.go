// Package schema has models, enums and the serialized forms shared by all parts of safe.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KPIScore is the weighted average of one KPI theme and the weight it carries in its dimension.
type KPIScore struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
	Weight  float64 `json:"weight"`
}

// DimensionScore is the weighted score of one dimension on the 0-5 scale.
type DimensionScore struct {
	Name  string     `json:"name"`
	Score float64    `json:"score"`
	KPIs  []KPIScore `json:"kpis,omitempty"`
}

// Scores holds per-dimension scores in taxonomy order and their mean.
type Scores struct {
	Overall    float64
	Dimensions []DimensionScore
}

// Dimension looks up a dimension score by name.
func (s Scores) Dimension(name string) (DimensionScore, bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return DimensionScore{}, false
}

// MarshalJSON renders {"overall": x, "dimensions": {"<name>": {"score": y}}},
// keeping dimensions in taxonomy order.
func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	overall, err := json.Marshal(s.Overall)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"overall":`)
	buf.Write(overall)
	buf.WriteString(`,"dimensions":{`)
	for i, d := range s.Dimensions {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}
		score, err := json.Marshal(d.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(`:{"score":`)
		buf.Write(score)
		buf.WriteByte('}')
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON, in document order.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var top struct {
		Overall    float64         `json:"overall"`
		Dimensions json.RawMessage `json:"dimensions"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	*s = Scores{Overall: top.Overall}
	return eachOrderedField(top.Dimensions, func(name string, raw json.RawMessage) error {
		var d struct {
			Score float64 `json:"score"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("dimension %q: %w", name, err)
		}
		s.Dimensions = append(s.Dimensions, DimensionScore{Name: name, Score: d.Score})
		return nil
	})
}

// CriticalMetric is an explicitly A-prioritised metric with its current rating.
type CriticalMetric struct {
	Key       MetricKey `json:"key"`
	Dimension string    `json:"dimension"`
	KPI       string    `json:"kpi"`
	Metric    string    `json:"metric"`
	Rating    int       `json:"rating"`
}

// Category is the performance band an overall score falls in.
type Category struct {
	Label      string        `json:"name"`
	StyleClass string        `json:"class"`
	Level      CategoryLevel `json:"level"`
}

// Insight is a generated headline about the scores.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EngineOptions selects between the alternate scoring behaviours.
type EngineOptions struct {
	CompletionPolicy CompletionPolicy `json:"completionPolicy"`
	CriticalPolicy   CriticalPolicy   `json:"criticalPolicy"`
	Naming           NamingScheme     `json:"naming"`
}

// DefaultEngineOptions returns the canonical policies.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		CompletionPolicy: SimpleCompletion,
		CriticalPolicy:   FullCritical,
		Naming:           StandardNaming,
	}
}

// DimensionRank is one row of the dimension leaderboard.
type DimensionRank struct {
	Rank     int      `json:"rank"`
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

// ScoreStats are descriptive statistics over dimension scores.
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Report is everything a caller renders for one assessment.
type Report struct {
	Scores           Scores           `json:"scores"`
	Completion       int              `json:"completionPercent"`
	CompletionPolicy CompletionPolicy `json:"completionPolicy"`
	RatedMetrics     int              `json:"ratedMetrics"`
	AssessedMetrics  int              `json:"nonZeroMetrics"`
	TotalMetrics     int              `json:"totalMetrics"`
	Category         Category         `json:"performanceCategory"`
	CriticalMetrics  []CriticalMetric `json:"criticalMetrics"`
	Insights         []Insight        `json:"insights"`
	Ranking          []DimensionRank  `json:"ranking"`
	Stats            ScoreStats       `json:"stats"`
}
