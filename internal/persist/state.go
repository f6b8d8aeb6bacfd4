package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
)

// StateKey returns the state store key of an assessment.
func StateKey(assessmentID string) string {
	return "assessment:" + assessmentID
}

// LoadState reads the state of an assessment. A missing entry yields an empty state.
func LoadState(store contract.StateStore, assessmentID string) (*schema.AssessmentState, error) {
	data, version, _, err := store.Get(StateKey(assessmentID))
	if errors.Is(err, ErrNotFound) {
		return schema.NewAssessmentState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for %s: %w", assessmentID, err)
	}
	if version != schema.StateVersion {
		return nil, fmt.Errorf("state for %s has version %d (expected %d)", assessmentID, version, schema.StateVersion)
	}

	state := schema.NewAssessmentState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to decode state for %s: %w", assessmentID, err)
	}
	return state, nil
}

// SaveState writes the state of an assessment.
func SaveState(store contract.StateStore, assessmentID string, state *schema.AssessmentState, at time.Time) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state for %s: %w", assessmentID, err)
	}
	if err := store.Set(StateKey(assessmentID), data, schema.StateVersion, at.Unix()); err != nil {
		return fmt.Errorf("failed to save state for %s: %w", assessmentID, err)
	}
	return nil
}
