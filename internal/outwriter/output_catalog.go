package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/safe/internal/catalog"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// catalogMetric is one metric row of the detailed catalog view.
type catalogMetric struct {
	Dimension string          `json:"dimension"`
	KPI       string          `json:"kpi"`
	Metric    string          `json:"metric"`
	Priority  schema.Priority `json:"priority"`
}

func catalogMetrics(tax *schema.Taxonomy) []catalogMetric {
	out := make([]catalogMetric, 0, tax.MetricCount())
	for _, dim := range tax.Dimensions {
		for _, kpi := range dim.KPIs {
			for _, m := range kpi.Metrics {
				out = append(out, catalogMetric{
					Dimension: dim.Name,
					KPI:       kpi.Name,
					Metric:    contract.FlattenName(m.Name),
					Priority:  m.Priority,
				})
			}
		}
	}
	return out
}

// WriteCatalog outputs the taxonomy: per-dimension counts, or every metric with cfg.Detail.
func WriteCatalog(tax *schema.Taxonomy, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cfg.Detail {
				return writeJSON(w, tax)
			}
			return writeJSON(w, catalog.Summarize(tax))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cfg.Detail {
				var rows [][]string
				for _, m := range catalogMetrics(tax) {
					rows = append(rows, []string{m.Dimension, m.KPI, m.Metric, string(m.Priority)})
				}
				return writeCSVWithHeader(w, []string{"dimension", "kpi", "metric", "priority"}, rows)
			}
			var rows [][]string
			for _, s := range catalog.Summarize(tax) {
				rows = append(rows, []string{s.Dimension, strconv.Itoa(s.KPIs), strconv.Itoa(s.Metrics)})
			}
			return writeCSVWithHeader(w, []string{"dimension", "kpis", "metrics"}, rows)
		}, "Wrote CSV")
	case schema.XLSXOut:
		dims := sheet{Name: "Dimensions", Header: []string{"Dimension", "KPIs", "Metrics"}}
		for _, s := range catalog.Summarize(tax) {
			dims.Rows = append(dims.Rows, []any{s.Dimension, s.KPIs, s.Metrics})
		}
		metrics := sheet{Name: "Metrics", Header: []string{"Dimension", "KPI", "Metric", "Priority"}}
		for _, m := range catalogMetrics(tax) {
			metrics.Rows = append(metrics.Rows, []any{m.Dimension, m.KPI, m.Metric, string(m.Priority)})
		}
		if err := writeXLSX(cfg.OutputFile, []sheet{dims, metrics}); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cfg.Detail {
				return writeCatalogDetailTable(w, tax, cfg)
			}
			return writeCatalogTable(w, tax)
		}, "Wrote table")
	}
}

func writeCatalogTable(w io.Writer, tax *schema.Taxonomy) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "KPIs", "Metrics"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, s := range catalog.Summarize(tax) {
		data = append(data, []string{s.Dimension, strconv.Itoa(s.KPIs), strconv.Itoa(s.Metrics)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d dimensions, %d KPI themes, %d metrics\n",
		len(tax.Dimensions), tax.KPICount(), tax.MetricCount())
	return err
}

func writeCatalogDetailTable(w io.Writer, tax *schema.Taxonomy, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "KPI", "Metric", "Priority"})
	maxWidth := getMaxTableTextWidth(cfg, 10) / 3
	var data [][]string
	for _, m := range catalogMetrics(tax) {
		data = append(data, []string{
			contract.TruncateText(m.Dimension, maxWidth),
			contract.TruncateText(m.KPI, maxWidth),
			contract.TruncateText(m.Metric, maxWidth),
			string(m.Priority),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
