package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/safe/core/algo"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// reportJSON is the JSON form of a single report with the subject it was computed for.
type reportJSON struct {
	Subject string `json:"subject"`
	schema.Report
}

// WriteReport outputs one evaluated report, dispatching on the configured format.
func WriteReport(subject string, report schema.Report, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, reportJSON{Subject: subject, Report: report})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report, fmtFloat)
		}, "Wrote CSV")
	case schema.XLSXOut:
		if err := writeXLSX(cfg.OutputFile, reportSheets(subject, report, fmtFloat)); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, subject, report, cfg, fmtFloat)
		}, "Wrote report")
	}
}

// writeReportText renders the human-readable report: summary, ranking, critical metrics and insights.
func writeReportText(w io.Writer, subject string, report schema.Report, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "Assessment: %s\n", subject); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Overall score: %s / %d (%s)\n",
		fmtFloat(report.Scores.Overall), schema.MaxRating, categoryLabel(report.Category, cfg)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completion: %d%% (%s), %d of %d metrics rated, %d non-zero\n\n",
		report.Completion, report.CompletionPolicy, report.RatedMetrics, report.TotalMetrics, report.AssessedMetrics); err != nil {
		return err
	}

	if err := writeRankingTable(w, report, cfg, fmtFloat); err != nil {
		return err
	}
	if cfg.Detail {
		if err := writeKPITable(w, report, cfg, fmtFloat); err != nil {
			return err
		}
	}
	if err := writeCriticalTable(w, report.CriticalMetrics, cfg); err != nil {
		return err
	}

	if len(report.Insights) > 0 {
		if _, err := fmt.Fprintln(w, "Insights:"); err != nil {
			return err
		}
		for _, in := range report.Insights {
			if _, err := fmt.Fprintf(w, "  - %s: %s\n", in.Title, in.Description); err != nil {
				return err
			}
		}
	}

	s := report.Stats
	_, err := fmt.Fprintf(w, "Dimension scores: mean %s, median %s, std dev %s, range %s-%s\n",
		fmtFloat(s.Mean), fmtFloat(s.Median), fmtFloat(s.StdDev), fmtFloat(s.Min), fmtFloat(s.Max))
	return err
}

// writeRankingTable lists the best cfg.Top dimensions and names the weakest one when rows were cut.
func writeRankingTable(w io.Writer, report schema.Report, cfg *contract.Config, fmtFloat func(float64) string) error {
	shown := algo.Top(report.Ranking, cfg.Top)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Dimension", "Score", "Category"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTableTextWidth(cfg, 30)
	data := make([][]string, 0, len(shown))
	for _, r := range shown {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			contract.TruncateText(r.Name, maxWidth),
			fmtFloat(r.Score),
			categoryLabel(r.Category, cfg),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(shown) < len(report.Ranking) {
		weakest := algo.Bottom(report.Ranking, 1)[0]
		if _, err := fmt.Fprintf(w, "Showing %d of %d dimensions, weakest is %s (%s)\n",
			len(shown), len(report.Ranking), weakest.Name, fmtFloat(weakest.Score)); err != nil {
			return err
		}
	}
	return nil
}

func writeKPITable(w io.Writer, report schema.Report, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "KPI", "Average", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTableTextWidth(cfg, 25) / 2
	var data [][]string
	for _, d := range report.Scores.Dimensions {
		for _, k := range d.KPIs {
			data = append(data, []string{
				contract.TruncateText(d.Name, maxWidth),
				contract.TruncateText(k.Name, maxWidth),
				fmtFloat(k.Average),
				fmtFloat(k.Weight),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCriticalTable lists critical metrics, capped at cfg.Top rows.
func writeCriticalTable(w io.Writer, critical []schema.CriticalMetric, cfg *contract.Config) error {
	if len(critical) == 0 {
		_, err := fmt.Fprintln(w, "No critical metrics.")
		return err
	}
	shown := critical
	if cfg.Top > 0 && len(shown) > cfg.Top {
		shown = shown[:cfg.Top]
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "KPI", "Metric", "Rating"})
	maxWidth := getMaxTableTextWidth(cfg, 10) / 3
	data := make([][]string, 0, len(shown))
	for _, c := range shown {
		data = append(data, []string{
			contract.TruncateText(c.Dimension, maxWidth),
			contract.TruncateText(c.KPI, maxWidth),
			contract.TruncateText(c.Metric, maxWidth),
			contract.GetRatingLabel(c.Rating),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d critical metrics\n\n", len(shown), len(critical))
	return err
}

// writeReportCSV writes one row per dimension in ranking order, then the overall row.
func writeReportCSV(w io.Writer, report schema.Report, fmtFloat func(float64) string) error {
	rows := make([][]string, 0, len(report.Ranking)+1)
	for _, r := range report.Ranking {
		rows = append(rows, []string{strconv.Itoa(r.Rank), r.Name, fmtFloat(r.Score), r.Category.Label})
	}
	rows = append(rows, []string{"", "overall", fmtFloat(report.Scores.Overall), report.Category.Label})
	return writeCSVWithHeader(w, []string{"rank", "dimension", "score", "category"}, rows)
}

func reportSheets(subject string, report schema.Report, fmtFloat func(float64) string) []sheet {
	summary := sheet{
		Name:   "Summary",
		Header: []string{"Field", "Value"},
		Rows: [][]any{
			{"Assessment", subject},
			{"Overall score", fmtFloat(report.Scores.Overall)},
			{"Category", report.Category.Label},
			{"Completion %", report.Completion},
			{"Completion policy", string(report.CompletionPolicy)},
			{"Rated metrics", report.RatedMetrics},
			{"Non-zero metrics", report.AssessedMetrics},
			{"Total metrics", report.TotalMetrics},
			{"Critical metrics", len(report.CriticalMetrics)},
		},
	}

	dims := sheet{Name: "Dimensions", Header: []string{"Rank", "Dimension", "Score", "Category"}}
	for _, r := range report.Ranking {
		dims.Rows = append(dims.Rows, []any{r.Rank, r.Name, r.Score, r.Category.Label})
	}

	kpis := sheet{Name: "KPIs", Header: []string{"Dimension", "KPI", "Average", "Weight"}}
	for _, d := range report.Scores.Dimensions {
		for _, k := range d.KPIs {
			kpis.Rows = append(kpis.Rows, []any{d.Name, k.Name, k.Average, k.Weight})
		}
	}

	critical := sheet{Name: "Critical", Header: []string{"Dimension", "KPI", "Metric", "Rating"}}
	for _, c := range report.CriticalMetrics {
		critical.Rows = append(critical.Rows, []any{c.Dimension, c.KPI, c.Metric, c.Rating})
	}

	insights := sheet{Name: "Insights", Header: []string{"Title", "Description"}}
	for _, in := range report.Insights {
		insights.Rows = append(insights.Rows, []any{in.Title, in.Description})
	}

	return []sheet{summary, dims, kpis, critical, insights}
}
