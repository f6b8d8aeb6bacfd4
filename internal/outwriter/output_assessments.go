package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const timeLayout = "2006-01-02 15:04"

func assessmentFields(r schema.AssessmentRecord) []string {
	return []string{
		r.ID, r.RespondentName, r.Organisation, r.City, r.Borough, r.Ward,
		r.Collection, string(r.Status),
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteAssessments outputs a listing of stored assessments.
func WriteAssessments(recs []schema.AssessmentRecord, cfg *contract.Config) error {
	header := []string{"id", "respondent", "organisation", "city", "borough", "ward", "collection", "status", "created_at", "updated_at"}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, recs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, assessmentFields(r))
			}
			return writeCSVWithHeader(w, header, rows)
		}, "Wrote CSV")
	case schema.XLSXOut:
		s := sheet{Name: "Assessments", Header: header}
		for _, r := range recs {
			fields := assessmentFields(r)
			row := make([]any, len(fields))
			for i, f := range fields {
				row[i] = f
			}
			s.Rows = append(s.Rows, row)
		}
		if err := writeXLSX(cfg.OutputFile, []sheet{s}); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentTable(w, recs, cfg)
		}, "Wrote table")
	}
}

func writeAssessmentTable(w io.Writer, recs []schema.AssessmentRecord, cfg *contract.Config) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No assessments found.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Respondent", "City", "Borough", "Ward", "Status", "Updated"})
	maxWidth := getMaxTableTextWidth(cfg, 60) / 2
	data := make([][]string, 0, len(recs))
	for _, r := range recs {
		data = append(data, []string{
			r.ID,
			contract.TruncateText(r.RespondentName, maxWidth),
			contract.TruncateText(r.City, maxWidth),
			r.Borough,
			r.Ward,
			string(r.Status),
			r.UpdatedAt.Local().Format(timeLayout),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d assessments\n", len(recs))
	return err
}

// assessmentDetail is the JSON form of `assessment show`.
type assessmentDetail struct {
	Assessment schema.AssessmentRecord `json:"assessment"`
	State      *schema.AssessmentState `json:"state"`
	History    []schema.ScoreRecord    `json:"history"`
}

// WriteAssessmentDetail outputs one assessment with its state and score history.
func WriteAssessmentDetail(rec schema.AssessmentRecord, state *schema.AssessmentState, history []schema.ScoreRecord, tax *schema.Taxonomy, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, assessmentDetail{Assessment: rec, State: state, History: history})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, history, fmtFloat)
		}, "Wrote CSV")
	case schema.XLSXOut:
		info := sheet{Name: "Assessment", Header: []string{"Field", "Value"}}
		labels := []string{"ID", "Respondent", "Organisation", "City", "Borough", "Ward", "Collection", "Status", "Created", "Updated"}
		for i, v := range assessmentFields(rec) {
			info.Rows = append(info.Rows, []any{labels[i], v})
		}
		// Rated holds the scored value; Form is what the survey form pre-selects.
		ratings := sheet{Name: "Ratings", Header: []string{"Dimension", "KPI", "Metric", "Rated", "Rating", "Form", "Priority"}}
		for _, k := range tax.MetricKeys() {
			m, _ := tax.FindMetric(k)
			ratings.Rows = append(ratings.Rows, []any{
				k.Dimension, k.KPI, k.Metric, state.IsRated(k),
				state.EffectiveRating(k), state.DisplayRating(k),
				string(state.EffectivePriority(k, m.Priority)),
			})
		}
		hist := sheet{Name: "History", Header: []string{"Scored", "Overall", "Completion %", "Policy", "Category", "Critical"}}
		for _, h := range history {
			hist.Rows = append(hist.Rows, []any{h.ScoredAt.UTC().Format(time.RFC3339), h.Overall, h.Completion, string(h.CompletionPolicy), h.Category, h.CriticalCount})
		}
		if err := writeXLSX(cfg.OutputFile, []sheet{info, ratings, hist}); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentDetailText(w, rec, state, history, tax, fmtFloat)
		}, "Wrote assessment")
	}
}

func writeAssessmentDetailText(w io.Writer, rec schema.AssessmentRecord, state *schema.AssessmentState, history []schema.ScoreRecord, tax *schema.Taxonomy, fmtFloat func(float64) string) error {
	location := rec.City
	if rec.Borough != "" {
		location += " / " + rec.Borough
	}
	if rec.Ward != "" {
		location += " / " + rec.Ward
	}
	lines := []string{
		fmt.Sprintf("Assessment %s (%s)", rec.ID, rec.Status),
		fmt.Sprintf("Respondent: %s", rec.RespondentName),
	}
	if rec.Organisation != "" {
		lines = append(lines, fmt.Sprintf("Organisation: %s", rec.Organisation))
	}
	lines = append(lines,
		fmt.Sprintf("Location: %s [%s]", location, rec.Collection),
		fmt.Sprintf("Created %s, updated %s", rec.CreatedAt.Local().Format(timeLayout), rec.UpdatedAt.Local().Format(timeLayout)),
		fmt.Sprintf("Ratings: %d, priority overrides: %d, metric weights: %d, KPI weights: %d",
			state.Ratings.Len(), state.Priorities.Len(), state.Weights.Metrics.Len(), state.Weights.KPIs.Len()),
		fmt.Sprintf("Catalog: %d metrics", tax.MetricCount()),
		"",
	)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "Not scored yet.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Scored", "Overall", "Complete", "Policy", "Category", "Critical"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, 0, len(history))
	for _, h := range history {
		data = append(data, []string{
			h.ScoredAt.Local().Format(timeLayout),
			fmtFloat(h.Overall),
			fmt.Sprintf("%d%%", h.Completion),
			string(h.CompletionPolicy),
			h.Category,
			strconv.Itoa(int(h.CriticalCount)),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeHistoryCSV(w io.Writer, history []schema.ScoreRecord, fmtFloat func(float64) string) error {
	rows := make([][]string, 0, len(history))
	for _, h := range history {
		rows = append(rows, []string{
			strconv.FormatInt(h.ScoreID, 10),
			h.ScoredAt.UTC().Format(time.RFC3339),
			fmtFloat(h.Overall),
			strconv.Itoa(int(h.Completion)),
			string(h.CompletionPolicy),
			h.Category,
			strconv.Itoa(int(h.CriticalCount)),
		})
	}
	header := []string{"score_id", "scored_at", "overall", "completion", "completion_policy", "category", "critical_count"}
	return writeCSVWithHeader(w, header, rows)
}
