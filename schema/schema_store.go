package schema

import "time"

// AssessmentRecord represents a row from the safe_assessments table.
type AssessmentRecord struct {
	ID             string           `json:"id"`
	RespondentName string           `json:"respondentName"`
	Organisation   string           `json:"organisation"`
	City           string           `json:"city"`
	Borough        string           `json:"borough"`
	Ward           string           `json:"ward"`
	Collection     string           `json:"collection"`
	Status         AssessmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ScoreRecord represents a row from the safe_score_records table.
// Every call to `safe assessment score` appends one.
type ScoreRecord struct {
	ScoreID          int64            `json:"scoreId"`
	AssessmentID     string           `json:"assessmentId"`
	ScoredAt         time.Time        `json:"scoredAt"`
	Overall          float64          `json:"overall"`
	Completion       int32            `json:"completion"`
	CompletionPolicy CompletionPolicy `json:"completionPolicy"`
	Category         string           `json:"category"`
	CriticalCount    int32            `json:"criticalCount"`
	DimensionScores  string           `json:"dimensionScores"` // Scores as JSON
}

// AssessmentFilter narrows assessment listings. Zero fields match everything.
type AssessmentFilter struct {
	City   string
	Status AssessmentStatus
}
