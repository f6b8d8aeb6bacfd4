package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/huangsam/safe/schema"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// batchRow is the flattened view of one batch entry.
type batchRow struct {
	ID            string  `json:"id"`
	Respondent    string  `json:"respondentName"`
	City          string  `json:"city"`
	Status        string  `json:"status"`
	Overall       float64 `json:"overall"`
	Completion    int     `json:"completionPercent"`
	Category      string  `json:"category"`
	CriticalCount int     `json:"criticalCount"`
}

func toBatchRows(entries []tracker.BatchEntry) []batchRow {
	rows := make([]batchRow, len(entries))
	for i, e := range entries {
		rows[i] = batchRow{
			ID:            e.Assessment.ID,
			Respondent:    e.Assessment.RespondentName,
			City:          e.Assessment.City,
			Status:        string(e.Assessment.Status),
			Overall:       e.Report.Scores.Overall,
			Completion:    e.Report.Completion,
			Category:      e.Report.Category.Label,
			CriticalCount: len(e.Report.CriticalMetrics),
		}
	}
	return rows
}

// WriteBatch outputs the evaluated reports of many assessments.
func WriteBatch(entries []tracker.BatchEntry, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, toBatchRows(entries), fmtFloat)
		}, "Wrote CSV")
	case schema.XLSXOut:
		if err := writeXLSX(cfg.OutputFile, batchSheets(entries)); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, entries, cfg, fmtFloat)
		}, "Wrote table")
	}
}

func writeBatchTable(w io.Writer, entries []tracker.BatchEntry, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No assessments found.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "ID", "Respondent", "City", "Status", "Overall", "Complete", "Category", "Critical"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTableTextWidth(cfg, 70) / 2
	overall := make([]float64, 0, len(entries))
	data := make([][]string, 0, len(entries))
	for i, e := range entries {
		overall = append(overall, e.Report.Scores.Overall)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			shortID(e.Assessment.ID),
			contract.TruncateText(e.Assessment.RespondentName, maxWidth),
			contract.TruncateText(e.Assessment.City, maxWidth),
			string(e.Assessment.Status),
			fmtFloat(e.Report.Scores.Overall),
			fmt.Sprintf("%d%%", e.Report.Completion),
			categoryLabel(e.Report.Category, cfg),
			strconv.Itoa(len(e.Report.CriticalMetrics)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	mean, _ := stats.Mean(overall)
	median, _ := stats.Median(overall)
	_, err := fmt.Fprintf(w, "Evaluated %d assessments with %d workers (mean overall %s, median %s)\n",
		len(entries), cfg.Workers, fmtFloat(mean), fmtFloat(median))
	return err
}

func writeBatchCSV(w io.Writer, rows []batchRow, fmtFloat func(float64) string) error {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			r.ID, r.Respondent, r.City, r.Status,
			fmtFloat(r.Overall), strconv.Itoa(r.Completion), r.Category, strconv.Itoa(r.CriticalCount),
		})
	}
	header := []string{"id", "respondent", "city", "status", "overall", "completion", "category", "critical_count"}
	return writeCSVWithHeader(w, header, data)
}

func batchSheets(entries []tracker.BatchEntry) []sheet {
	summary := sheet{
		Name:   "Summary",
		Header: []string{"ID", "Respondent", "City", "Status", "Overall", "Completion %", "Category", "Critical"},
	}
	dims := sheet{Name: "Dimensions", Header: []string{"ID", "Rank", "Dimension", "Score", "Category"}}
	critical := sheet{Name: "Critical", Header: []string{"ID", "Dimension", "KPI", "Metric", "Rating"}}
	insights := sheet{Name: "Insights", Header: []string{"ID", "Title", "Description"}}

	for _, r := range toBatchRows(entries) {
		summary.Rows = append(summary.Rows, []any{r.ID, r.Respondent, r.City, r.Status, r.Overall, r.Completion, r.Category, r.CriticalCount})
	}
	for _, e := range entries {
		id := e.Assessment.ID
		for _, r := range e.Report.Ranking {
			dims.Rows = append(dims.Rows, []any{id, r.Rank, r.Name, r.Score, r.Category.Label})
		}
		for _, c := range e.Report.CriticalMetrics {
			critical.Rows = append(critical.Rows, []any{id, c.Dimension, c.KPI, c.Metric, c.Rating})
		}
		for _, in := range e.Report.Insights {
			insights.Rows = append(insights.Rows, []any{id, in.Title, in.Description})
		}
	}
	return []sheet{summary, dims, critical, insights}
}

// shortID keeps the first block of a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
