package persist

import (
	"time"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetStateStore implements the StoreManager interface.
func (m *MockStoreManager) GetStateStore() contract.StateStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.StateStore)
	return store
}

// GetAssessmentStore implements the StoreManager interface.
func (m *MockStoreManager) GetAssessmentStore() contract.AssessmentStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AssessmentStore)
	return store
}

// MockStateStore is a mock implementation of StateStore for testing.
type MockStateStore struct {
	mock.Mock
}

var _ contract.StateStore = &MockStateStore{} // Compile-time check

// Get implements the StateStore interface.
func (m *MockStateStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the StateStore interface.
func (m *MockStateStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Delete implements the StateStore interface.
func (m *MockStateStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// GetStatus implements the StateStore interface.
func (m *MockStateStore) GetStatus() (schema.StateStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StateStatus), args.Error(1)
}

// Close implements the StateStore interface.
func (m *MockStateStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAssessmentStore is a mock implementation of AssessmentStore for testing.
type MockAssessmentStore struct {
	mock.Mock
}

var _ contract.AssessmentStore = &MockAssessmentStore{} // Compile-time check

// CreateAssessment implements the AssessmentStore interface.
func (m *MockAssessmentStore) CreateAssessment(rec schema.AssessmentRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// GetAssessment implements the AssessmentStore interface.
func (m *MockAssessmentStore) GetAssessment(id string) (schema.AssessmentRecord, error) {
	args := m.Called(id)
	return args.Get(0).(schema.AssessmentRecord), args.Error(1)
}

// ListAssessments implements the AssessmentStore interface.
func (m *MockAssessmentStore) ListAssessments(filter schema.AssessmentFilter) ([]schema.AssessmentRecord, error) {
	args := m.Called(filter)
	recs, _ := args.Get(0).([]schema.AssessmentRecord)
	return recs, args.Error(1)
}

// UpdateStatus implements the AssessmentStore interface.
func (m *MockAssessmentStore) UpdateStatus(id string, status schema.AssessmentStatus, at time.Time) error {
	args := m.Called(id, status, at)
	return args.Error(0)
}

// TouchAssessment implements the AssessmentStore interface.
func (m *MockAssessmentStore) TouchAssessment(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

// RecordScore implements the AssessmentStore interface.
func (m *MockAssessmentStore) RecordScore(rec schema.ScoreRecord) (int64, error) {
	args := m.Called(rec)
	return args.Get(0).(int64), args.Error(1)
}

// ListScores implements the AssessmentStore interface.
func (m *MockAssessmentStore) ListScores(assessmentID string) ([]schema.ScoreRecord, error) {
	args := m.Called(assessmentID)
	recs, _ := args.Get(0).([]schema.ScoreRecord)
	return recs, args.Error(1)
}

// GetStatus implements the AssessmentStore interface.
func (m *MockAssessmentStore) GetStatus() (schema.AssessmentStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AssessmentStoreStatus), args.Error(1)
}

// Close implements the AssessmentStore interface.
func (m *MockAssessmentStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
