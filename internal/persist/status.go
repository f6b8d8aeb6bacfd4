package persist

import (
	"fmt"
	"slices"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintStateStatus prints state store status information.
func PrintStateStatus(status schema.StateStatus) {
	fmt.Printf("State Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format(statusTimeFormat))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeFormat))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintAssessmentStatus prints assessment store status information.
func PrintAssessmentStatus(status schema.AssessmentStoreStatus) {
	fmt.Printf("Assessment Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Assessments: %d\n", status.TotalAssessments)
	fmt.Printf("Submitted: %d\n", status.SubmittedCount)
	fmt.Printf("Total Scores: %d\n", status.TotalScores)
	if status.TotalScores > 0 {
		fmt.Printf("Last Score: %s\n", status.LastScoreTime.Format(statusTimeFormat))
		fmt.Printf("Oldest Score: %s\n", status.OldestScoreTime.Format(statusTimeFormat))
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// GetStoreStatus collects the status of both stores held by the manager.
func GetStoreStatus(mgr contract.StoreManager) (schema.StoreStatus, error) {
	var out schema.StoreStatus
	if s := mgr.GetStateStore(); s != nil {
		st, err := s.GetStatus()
		if err != nil {
			return out, fmt.Errorf("failed to get state status: %w", err)
		}
		out.State = st
	}
	if s := mgr.GetAssessmentStore(); s != nil {
		st, err := s.GetStatus()
		if err != nil {
			return out, fmt.Errorf("failed to get assessment status: %w", err)
		}
		out.Assessments = st
	}
	return out, nil
}
