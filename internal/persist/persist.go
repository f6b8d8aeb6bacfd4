// Package persist stores assessment state and score history in SQL backends.
package persist

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
)

// StoreManagerImpl manages the state and assessment stores.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	state        contract.StateStore
	assessments  contract.AssessmentStore
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetStateStore returns the StateStore.
func (mgr *StoreManagerImpl) GetStateStore() contract.StateStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.state
}

// GetAssessmentStore returns the AssessmentStore.
func (mgr *StoreManagerImpl) GetAssessmentStore() contract.AssessmentStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.assessments
}

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with separate state and assessment stores.
// An empty backend leaves the corresponding store unset.
func InitStores(stateBackend schema.DatabaseBackend, stateConnStr string, assessmentBackend schema.DatabaseBackend, assessmentConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var stateStore contract.StateStore
		if stateBackend != "" {
			s, err := NewStateStore(stateTable, stateBackend, stateConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize state store: %w", err)
				return
			}
			stateStore = s
		}

		var assessmentStore contract.AssessmentStore
		if assessmentBackend != "" {
			s, err := NewAssessmentStore(assessmentBackend, assessmentConnStr)
			if err != nil {
				if stateStore != nil {
					_ = stateStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize assessment store: %w", err)
				return
			}
			assessmentStore = s
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.state = stateStore
		Manager.assessments = assessmentStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.state != nil {
			_ = Manager.state.Close()
		}
		if Manager.assessments != nil {
			_ = Manager.assessments.Close()
		}
	})
}

// ClearState removes all stored state for the backend.
// For SQLite it deletes the database file; for MySQL and PostgreSQL it drops the table.
func ClearState(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, stateTable)
}

// ClearAssessments removes all assessment records and score history for the backend.
func ClearAssessments(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, scoreRecordsTable, assessmentsTable)
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range tables {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
