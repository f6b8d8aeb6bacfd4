package schema

import "time"

// StateStatus represents the status of the state store.
type StateStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AssessmentStoreStatus represents the status of the assessment store.
type AssessmentStoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalAssessments int              `json:"total_assessments"`
	SubmittedCount   int              `json:"submitted_count"`
	TotalScores      int              `json:"total_scores"`
	LastScoreTime    time.Time        `json:"last_score_time"`
	OldestScoreTime  time.Time        `json:"oldest_score_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// StoreStatus combines both stores for `safe store status`.
type StoreStatus struct {
	State       StateStatus           `json:"state"`
	Assessments AssessmentStoreStatus `json:"assessments"`
}
