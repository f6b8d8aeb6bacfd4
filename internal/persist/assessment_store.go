package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
)

// Table names for assessment tracking.
const (
	assessmentsTable  = "safe_assessments"
	scoreRecordsTable = "safe_score_records"
)

// assessmentColumns is the column list shared by every assessment SELECT.
const assessmentColumns = `assessment_id, respondent_name, organisation, city, borough, ward,
	collection, status, created_at, updated_at`

// AssessmentStoreImpl implements the AssessmentStore interface.
type AssessmentStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AssessmentStore = &AssessmentStoreImpl{} // Compile-time check

// NewAssessmentStore creates a new AssessmentStore with the specified backend.
func NewAssessmentStore(backend schema.DatabaseBackend, connStr string) (*AssessmentStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &AssessmentStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAssessmentDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAssessmentTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create assessment tables: %w", err)
	}

	return &AssessmentStoreImpl{db: db, backend: backend}, nil
}

// createAssessmentTables creates the assessment tracking tables.
func createAssessmentTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{assessmentsTable, getCreateAssessmentsQuery(backend)},
		{scoreRecordsTable, getCreateScoreRecordsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateAssessmentsQuery returns the CREATE TABLE query for safe_assessments.
func getCreateAssessmentsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(assessmentsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				assessment_id VARCHAR(36) PRIMARY KEY,
				respondent_name VARCHAR(255) NOT NULL,
				organisation VARCHAR(255) NOT NULL,
				city VARCHAR(255) NOT NULL,
				borough VARCHAR(255) NOT NULL,
				ward VARCHAR(255) NOT NULL,
				collection VARCHAR(64) NOT NULL,
				status VARCHAR(20) NOT NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				assessment_id TEXT PRIMARY KEY,
				respondent_name TEXT NOT NULL,
				organisation TEXT NOT NULL,
				city TEXT NOT NULL,
				borough TEXT NOT NULL,
				ward TEXT NOT NULL,
				collection TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				assessment_id TEXT PRIMARY KEY,
				respondent_name TEXT NOT NULL,
				organisation TEXT NOT NULL,
				city TEXT NOT NULL,
				borough TEXT NOT NULL,
				ward TEXT NOT NULL,
				collection TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getCreateScoreRecordsQuery returns the CREATE TABLE query for safe_score_records.
func getCreateScoreRecordsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(scoreRecordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				score_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				assessment_id VARCHAR(36) NOT NULL,
				scored_at DATETIME(6) NOT NULL,
				overall DOUBLE NOT NULL,
				completion INT NOT NULL,
				completion_policy VARCHAR(32) NOT NULL,
				category VARCHAR(64) NOT NULL,
				critical_count INT NOT NULL,
				dimension_scores TEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				score_id BIGSERIAL PRIMARY KEY,
				assessment_id TEXT NOT NULL,
				scored_at TIMESTAMPTZ NOT NULL,
				overall DOUBLE PRECISION NOT NULL,
				completion INT NOT NULL,
				completion_policy TEXT NOT NULL,
				category TEXT NOT NULL,
				critical_count INT NOT NULL,
				dimension_scores TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				score_id INTEGER PRIMARY KEY AUTOINCREMENT,
				assessment_id TEXT NOT NULL,
				scored_at TEXT NOT NULL,
				overall REAL NOT NULL,
				completion INTEGER NOT NULL,
				completion_policy TEXT NOT NULL,
				category TEXT NOT NULL,
				critical_count INTEGER NOT NULL,
				dimension_scores TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// CreateAssessment inserts a new assessment record.
func (as *AssessmentStoreImpl) CreateAssessment(rec schema.AssessmentRecord) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(assessmentsTable, as.backend), assessmentColumns, placeholders(as.backend, 10))
	_, err := as.db.Exec(query,
		rec.ID, rec.RespondentName, rec.Organisation, rec.City, rec.Borough, rec.Ward,
		rec.Collection, string(rec.Status),
		formatTime(rec.CreatedAt, as.backend), formatTime(rec.UpdatedAt, as.backend))
	if err != nil {
		return fmt.Errorf("failed to insert assessment %s: %w", rec.ID, err)
	}
	return nil
}

// GetAssessment returns the record with the given ID.
func (as *AssessmentStoreImpl) GetAssessment(id string) (schema.AssessmentRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return schema.AssessmentRecord{}, fmt.Errorf("assessment %s: %w", id, ErrNotFound)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE assessment_id = %s`,
		assessmentColumns, quoteTableName(assessmentsTable, as.backend), placeholder(as.backend, 1))
	rec, err := as.scanAssessment(as.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.AssessmentRecord{}, fmt.Errorf("assessment %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListAssessments returns records matching filter, oldest first.
func (as *AssessmentStoreImpl) ListAssessments(filter schema.AssessmentFilter) ([]schema.AssessmentRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	var where []string
	var args []any
	if filter.City != "" {
		args = append(args, schema.CollectionFor(filter.City))
		where = append(where, "collection = "+placeholder(as.backend, len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "status = "+placeholder(as.backend, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, assessmentColumns, quoteTableName(assessmentsTable, as.backend))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, assessment_id"

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AssessmentRecord
	for rows.Next() {
		rec, err := as.scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (as *AssessmentStoreImpl) scanAssessment(row rowScanner) (schema.AssessmentRecord, error) {
	var rec schema.AssessmentRecord
	var status string
	created := timeColumn{backend: as.backend}
	updated := timeColumn{backend: as.backend}
	if err := row.Scan(&rec.ID, &rec.RespondentName, &rec.Organisation, &rec.City, &rec.Borough, &rec.Ward,
		&rec.Collection, &status, created.dest(), updated.dest()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan assessment: %w", err)
	}
	rec.Status = schema.AssessmentStatus(status)

	var err error
	if rec.CreatedAt, err = created.value(); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = updated.value(); err != nil {
		return rec, err
	}
	return rec, nil
}

// UpdateStatus changes the lifecycle status of an assessment.
func (as *AssessmentStoreImpl) UpdateStatus(id string, status schema.AssessmentStatus, at time.Time) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET status = %s, updated_at = %s WHERE assessment_id = %s`,
		quoteTableName(assessmentsTable, as.backend),
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3))
	return as.execUpdate(id, query, string(status), formatTime(at, as.backend), id)
}

// TouchAssessment bumps the updated time after its state changed.
func (as *AssessmentStoreImpl) TouchAssessment(id string, at time.Time) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET updated_at = %s WHERE assessment_id = %s`,
		quoteTableName(assessmentsTable, as.backend), placeholder(as.backend, 1), placeholder(as.backend, 2))
	return as.execUpdate(id, query, formatTime(at, as.backend), id)
}

// execUpdate runs an UPDATE against one assessment and maps a missing row to ErrNotFound.
func (as *AssessmentStoreImpl) execUpdate(id, query string, args ...any) error {
	result, err := as.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update assessment %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil || n > 0 {
		return err
	}
	// MySQL reports zero affected rows when nothing changed, so confirm the row exists.
	_, err = as.GetAssessment(id)
	return err
}

// RecordScore appends a score record and returns its ID.
func (as *AssessmentStoreImpl) RecordScore(rec schema.ScoreRecord) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(scoreRecordsTable, as.backend)
	columns := `assessment_id, scored_at, overall, completion, completion_policy, category, critical_count, dimension_scores`
	args := []any{
		rec.AssessmentID, formatTime(rec.ScoredAt, as.backend), rec.Overall, rec.Completion,
		string(rec.CompletionPolicy), rec.Category, rec.CriticalCount, rec.DimensionScores,
	}

	var scoreID int64
	var err error
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING score_id`, quotedTableName, columns, placeholders(as.backend, len(args)))
		err = as.db.QueryRow(query, args...).Scan(&scoreID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, columns, placeholders(as.backend, len(args)))
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert score record: %w", err)
		}
		scoreID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert score record: %w", err)
	}
	return scoreID, nil
}

// ListScores returns score records in insertion order, all of them when assessmentID is empty.
func (as *AssessmentStoreImpl) ListScores(assessmentID string) ([]schema.ScoreRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT score_id, assessment_id, scored_at, overall, completion, completion_policy,
		category, critical_count, dimension_scores FROM %s`, quoteTableName(scoreRecordsTable, as.backend))
	var args []any
	if assessmentID != "" {
		query += " WHERE assessment_id = " + placeholder(as.backend, 1)
		args = append(args, assessmentID)
	}
	query += " ORDER BY score_id"

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query score records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScoreRecord
	for rows.Next() {
		var rec schema.ScoreRecord
		var policy string
		scored := timeColumn{backend: as.backend}
		if err := rows.Scan(&rec.ScoreID, &rec.AssessmentID, scored.dest(), &rec.Overall, &rec.Completion,
			&policy, &rec.Category, &rec.CriticalCount, &rec.DimensionScores); err != nil {
			return nil, fmt.Errorf("failed to scan score record: %w", err)
		}
		rec.CompletionPolicy = schema.CompletionPolicy(policy)
		if rec.ScoredAt, err = scored.value(); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score records: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (as *AssessmentStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the assessment store.
func (as *AssessmentStoreImpl) GetStatus() (schema.AssessmentStoreStatus, error) {
	status := schema.AssessmentStoreStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	for _, table := range []string{assessmentsTable, scoreRecordsTable} {
		count, err := tableRowCount(as.db, table, as.backend)
		if err != nil {
			return status, err
		}
		status.TableSizes[table] = count
	}
	status.TotalAssessments = int(status.TableSizes[assessmentsTable])
	status.TotalScores = int(status.TableSizes[scoreRecordsTable])

	submittedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s",
		quoteTableName(assessmentsTable, as.backend), placeholder(as.backend, 1))
	if err := as.db.QueryRow(submittedQuery, string(schema.SubmittedStatus)).Scan(&status.SubmittedCount); err != nil {
		return status, fmt.Errorf("failed to count submitted assessments: %w", err)
	}

	if status.TotalScores > 0 {
		quoted := quoteTableName(scoreRecordsTable, as.backend)
		last := timeColumn{backend: as.backend}
		lastQuery := fmt.Sprintf("SELECT scored_at FROM %s ORDER BY score_id DESC LIMIT 1", quoted)
		if err := as.db.QueryRow(lastQuery).Scan(last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last score time: %w", err)
		}
		oldest := timeColumn{backend: as.backend}
		oldestQuery := fmt.Sprintf("SELECT scored_at FROM %s ORDER BY score_id ASC LIMIT 1", quoted)
		if err := as.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest score time: %w", err)
		}

		var err error
		if status.LastScoreTime, err = last.value(); err != nil {
			return status, err
		}
		if status.OldestScoreTime, err = oldest.value(); err != nil {
			return status, err
		}
	}

	return status, nil
}
