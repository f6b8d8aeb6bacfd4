// Package contract provides interfaces and shared utilities for safe's internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/safe/schema"
)

// StoreManager hands out the configured stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetStateStore() StateStore
	GetAssessmentStore() AssessmentStore
}

// StateStore keeps versioned assessment state blobs by key.
type StateStore interface {
	// Get returns the blob, its format version and the Unix time it was written.
	Get(key string) ([]byte, int, int64, error)

	// Set inserts or replaces the blob stored under key.
	Set(key string, value []byte, version int, timestamp int64) error

	// Delete removes key. Missing keys are not an error.
	Delete(key string) error

	// GetStatus returns status information about the state store.
	GetStatus() (schema.StateStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// AssessmentStore keeps assessment metadata and the history of computed scores.
type AssessmentStore interface {
	// CreateAssessment inserts a new assessment record.
	CreateAssessment(rec schema.AssessmentRecord) error

	// GetAssessment returns the record with the given ID.
	GetAssessment(id string) (schema.AssessmentRecord, error)

	// ListAssessments returns records matching filter, oldest first.
	ListAssessments(filter schema.AssessmentFilter) ([]schema.AssessmentRecord, error)

	// UpdateStatus changes the lifecycle status of an assessment.
	UpdateStatus(id string, status schema.AssessmentStatus, at time.Time) error

	// TouchAssessment bumps the updated time after its state changed.
	TouchAssessment(id string, at time.Time) error

	// RecordScore appends a score record and returns its ID.
	RecordScore(rec schema.ScoreRecord) (int64, error)

	// ListScores returns score records, all of them when assessmentID is empty.
	ListScores(assessmentID string) ([]schema.ScoreRecord, error)

	// GetStatus returns status information about the assessment store.
	GetStatus() (schema.AssessmentStoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
