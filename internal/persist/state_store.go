package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
)

// stateTable is the name of the table holding assessment state blobs.
const stateTable = "safe_state"

// StateStoreImpl stores versioned state blobs using various database backends.
type StateStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.StateStore = &StateStoreImpl{} // Compile-time check

// NewStateStore initializes and returns a new StateStore based on the backend type.
func NewStateStore(tableName string, backend schema.DatabaseBackend, connStr string) (*StateStoreImpl, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &StateStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, contract.GetStateDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	if _, err := db.Exec(getCreateStateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &StateStoreImpl{db: db, tableName: tableName, backend: backend, connStr: connStr}, nil
}

// getCreateStateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateStateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key VARCHAR(255) PRIMARY KEY,
				state_value LONGBLOB NOT NULL,
				state_version INT NOT NULL,
				state_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key TEXT PRIMARY KEY,
				state_value BYTEA NOT NULL,
				state_version INTEGER NOT NULL,
				state_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key TEXT PRIMARY KEY,
				state_value BLOB NOT NULL,
				state_version INTEGER NOT NULL,
				state_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves a value by key from the store. Missing keys yield ErrNotFound.
func (ss *StateStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, 0, 0, ErrNotFound
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT state_value, state_version, state_timestamp FROM %s WHERE state_key = %s`,
		quoteTableName(ss.tableName, ss.backend), placeholder(ss.backend, 1))
	if err := ss.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, fmt.Errorf("state %q: %w", key, ErrNotFound)
		}
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ss *StateStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	_, err := ss.db.Exec(ss.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// Delete removes key from the store.
func (ss *StateStoreImpl) Delete(key string) error {
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE state_key = %s`, quoteTableName(ss.tableName, ss.backend), placeholder(ss.backend, 1))
	_, err := ss.db.Exec(query, key)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ss *StateStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ss.tableName, ss.backend)
	switch ss.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (state_key, state_value, state_version, state_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE state_value = new.state_value, state_version = new.state_version, state_timestamp = new.state_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (state_key, state_value, state_version, state_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (state_key) DO UPDATE SET state_value = EXCLUDED.state_value, state_version = EXCLUDED.state_version, state_timestamp = EXCLUDED.state_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (state_key, state_value, state_version, state_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Close closes the underlying DB connection.
func (ss *StateStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the state store.
func (ss *StateStoreImpl) GetStatus() (schema.StateStatus, error) {
	status := schema.StateStatus{
		Backend:   string(ss.backend),
		Connected: ss.db != nil,
	}

	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ss.tableName, ss.backend)

	count, err := tableRowCount(ss.db, ss.tableName, ss.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(count)

	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(state_timestamp), MIN(state_timestamp) FROM %s", quotedTableName)
	if err := ss.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	// Estimate table size (approximate)
	switch ss.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ss.db.QueryRow(sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.MySQLBackend:
		// Fallback rough estimate if information_schema query fails
		status.TableSizeBytes = int64(status.TotalEntries) * 1000
		cfg, err := mysql.ParseDSN(ss.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ss.db.QueryRow(sizeQuery, cfg.DBName, ss.tableName).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = int64(status.TotalEntries) * 1000
		}
	case schema.PostgreSQLBackend:
		if err := ss.db.QueryRow("SELECT pg_total_relation_size($1)", ss.tableName).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = int64(status.TotalEntries) * 1000
		}
	}

	return status, nil
}
