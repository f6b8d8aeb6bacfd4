// Package parquet exports assessment records and score history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/safe/schema"
	"github.com/parquet-go/parquet-go"
)

// Assessment maps to the safe_assessments database table.
type Assessment struct {
	AssessmentID   string    `parquet:"assessment_id,snappy"`
	RespondentName string    `parquet:"respondent_name,snappy"`
	Organisation   *string   `parquet:"organisation,optional,snappy"`
	City           string    `parquet:"city,snappy"`
	Borough        *string   `parquet:"borough,optional,snappy"`
	Ward           *string   `parquet:"ward,optional,snappy"`
	Collection     string    `parquet:"collection,snappy"`
	Status         string    `parquet:"status,snappy"`
	CreatedAt      time.Time `parquet:"created_at,snappy"`
	UpdatedAt      time.Time `parquet:"updated_at,snappy"`
}

// ScoreRecord maps to the safe_score_records database table.
type ScoreRecord struct {
	ScoreID          int64     `parquet:"score_id,snappy"`
	AssessmentID     string    `parquet:"assessment_id,snappy"`
	ScoredAt         time.Time `parquet:"scored_at,snappy"`
	Overall          float64   `parquet:"overall,snappy"`
	Completion       int32     `parquet:"completion,snappy"`
	CompletionPolicy string    `parquet:"completion_policy,snappy"`
	Category         string    `parquet:"category,snappy"`
	CriticalCount    int32     `parquet:"critical_count,snappy"`

	// DimensionScores contains the JSON-encoded per-dimension scores
	DimensionScores string `parquet:"dimension_scores,snappy"`
}

// WriteAssessmentsParquet writes assessment rows to a Parquet file.
func WriteAssessmentsParquet(data []Assessment, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScoreRecordsParquet writes score rows to a Parquet file.
func WriteScoreRecordsParquet(data []ScoreRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the Parquet schema from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// optional maps an empty string to a null column value.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConvertAssessmentRecords converts schema.AssessmentRecord to Assessment for Parquet export.
func ConvertAssessmentRecords(records []schema.AssessmentRecord) []Assessment {
	result := make([]Assessment, len(records))
	for i, record := range records {
		result[i] = Assessment{
			AssessmentID:   record.ID,
			RespondentName: record.RespondentName,
			Organisation:   optional(record.Organisation),
			City:           record.City,
			Borough:        optional(record.Borough),
			Ward:           optional(record.Ward),
			Collection:     record.Collection,
			Status:         string(record.Status),
			CreatedAt:      record.CreatedAt,
			UpdatedAt:      record.UpdatedAt,
		}
	}
	return result
}

// ConvertScoreRecords converts schema.ScoreRecord to ScoreRecord for Parquet export.
func ConvertScoreRecords(records []schema.ScoreRecord) []ScoreRecord {
	result := make([]ScoreRecord, len(records))
	for i, record := range records {
		result[i] = ScoreRecord{
			ScoreID:          record.ScoreID,
			AssessmentID:     record.AssessmentID,
			ScoredAt:         record.ScoredAt,
			Overall:          record.Overall,
			Completion:       record.Completion,
			CompletionPolicy: string(record.CompletionPolicy),
			Category:         record.Category,
			CriticalCount:    record.CriticalCount,
			DimensionScores:  record.DimensionScores,
		}
	}
	return result
}
