package persist

import (
	"errors"
	"fmt"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/parquet"
	"github.com/huangsam/safe/schema"
)

// ExportAssessments writes every assessment and score record to Parquet files
// named after outputFile.
func ExportAssessments(store contract.AssessmentStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("assessment store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get assessment status: %w", err)
	}
	if status.TotalAssessments == 0 {
		return errors.New("no assessment data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total assessments: %d\n", status.TotalAssessments)
	fmt.Printf("Total score records: %d\n", status.TotalScores)

	assessments, err := store.ListAssessments(schema.AssessmentFilter{})
	if err != nil {
		return fmt.Errorf("failed to retrieve assessments: %w", err)
	}
	scores, err := store.ListScores("")
	if err != nil {
		return fmt.Errorf("failed to retrieve score records: %w", err)
	}

	assessmentsFile := outputFile + ".assessments.parquet"
	if err := parquet.WriteAssessmentsParquet(parquet.ConvertAssessmentRecords(assessments), assessmentsFile); err != nil {
		return fmt.Errorf("failed to write assessments: %w", err)
	}
	fmt.Printf("Exported %d assessments to: %s\n", len(assessments), assessmentsFile)

	scoresFile := outputFile + ".score_records.parquet"
	if err := parquet.WriteScoreRecordsParquet(parquet.ConvertScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write score records: %w", err)
	}
	fmt.Printf("Exported %d score records to: %s\n", len(scores), scoresFile)

	return nil
}
