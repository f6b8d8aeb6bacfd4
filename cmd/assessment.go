package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/outwriter"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/huangsam/safe/schema"
	"github.com/spf13/cobra"
)

// mustService builds the assessment service or exits.
func mustService() *tracker.Service {
	svc, err := newService()
	if err != nil {
		contract.LogFatal("Cannot open assessments", err)
	}
	return svc
}

// metricKeyFromFlags reads --dimension, --kpi and --metric.
func metricKeyFromFlags(cmd *cobra.Command) schema.MetricKey {
	dim, _ := cmd.Flags().GetString("dimension")
	kpi, _ := cmd.Flags().GetString("kpi")
	metric, _ := cmd.Flags().GetString("metric")
	return schema.MetricKey{Dimension: dim, KPI: kpi, Metric: metric}
}

// filterFromFlags reads --city and --status.
func filterFromFlags(cmd *cobra.Command) (schema.AssessmentFilter, error) {
	city, _ := cmd.Flags().GetString("city")
	status, _ := cmd.Flags().GetString("status")
	filter := schema.AssessmentFilter{City: strings.TrimSpace(city)}
	if status != "" {
		s := schema.AssessmentStatus(strings.ToLower(strings.TrimSpace(status)))
		if _, ok := schema.ValidAssessmentStatuses[s]; !ok {
			return filter, fmt.Errorf("invalid status %q: must be draft or submitted", status)
		}
		filter.Status = s
	}
	return filter, nil
}

// subjectOf names an assessment in report headers.
func subjectOf(rec schema.AssessmentRecord) string {
	name := rec.RespondentName
	if name == "" {
		name = rec.ID
	}
	return fmt.Sprintf("%s, %s (%s)", name, rec.City, rec.ID)
}

// assessmentCmd groups the assessment lifecycle commands.
var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Create, rate and score stored assessments",
	Long: `Manage assessments kept in the state and assessment stores.

An assessment belongs to a city collection and starts as a draft with no ratings.
Ratings, priority overrides and weights are edited one metric at a time or
imported from a state document. Scoring records a snapshot in the score history.

Subcommands:
  create   - Register a new assessment
  list     - List assessments
  show     - Show one assessment with its score history
  rate     - Rate one metric from 1 to 5
  priority - Override the priority of one metric
  weight   - Override the weight of a metric or KPI theme
  import   - Replace the state with a state document
  score    - Evaluate and record a score
  submit   - Mark an assessment as submitted`,
}

var assessmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new draft assessment",
	Long: `Create a draft assessment for a city and print its ID.

Examples:
  safe assessment create --respondent "Ana Silva" --organisation "Leeds Council" --city Leeds --borough North`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		in := tracker.CreateInput{}
		in.RespondentName, _ = cmd.Flags().GetString("respondent")
		in.Organisation, _ = cmd.Flags().GetString("organisation")
		in.City, _ = cmd.Flags().GetString("city")
		in.Borough, _ = cmd.Flags().GetString("borough")
		in.Ward, _ = cmd.Flags().GetString("ward")

		rec, err := mustService().Create(in)
		if err != nil {
			contract.LogFatal("Cannot create assessment", err)
		}
		fmt.Printf("Created assessment %s in %s\n", rec.ID, rec.Collection)
	},
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	Long: `List assessments, oldest first, optionally narrowed to one city or status.

Examples:
  safe assessment list --city Leeds
  safe assessment list --status submitted --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		filter, err := filterFromFlags(cmd)
		if err != nil {
			contract.LogFatal("Invalid filter", err)
		}
		recs, err := mustService().List(filter)
		if err != nil {
			contract.LogFatal("Cannot list assessments", err)
		}
		if err := outwriter.WriteAssessments(recs, cfg); err != nil {
			contract.LogFatal("Cannot write assessments", err)
		}
	},
}

var assessmentShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show one assessment with its state and score history",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		svc := mustService()
		rec, state, err := svc.Show(args[0])
		if err != nil {
			contract.LogFatal("Cannot load assessment", err)
		}
		history, err := svc.History(args[0])
		if err != nil {
			contract.LogFatal("Cannot load score history", err)
		}
		if err := outwriter.WriteAssessmentDetail(rec, state, history, taxonomy, cfg); err != nil {
			contract.LogFatal("Cannot write assessment", err)
		}
	},
}

var assessmentRateCmd = &cobra.Command{
	Use:   "rate <id>",
	Short: "Rate one metric from 1 to 5",
	Long: `Set the rating of one metric.

Examples:
  safe assessment rate 3f2a... --dimension "Outdoor Spaces" --kpi "Green spaces" --metric "Benches" --rating 4`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		rating, _ := cmd.Flags().GetInt("rating")
		key := metricKeyFromFlags(cmd)
		if err := mustService().Rate(args[0], key, rating); err != nil {
			contract.LogFatal("Cannot rate metric", err)
		}
		fmt.Printf("Rated %s: %d\n", key, rating)
	},
}

var assessmentPriorityCmd = &cobra.Command{
	Use:   "priority <id>",
	Short: "Override the priority of one metric",
	Long: `Set the priority of one metric. Metrics explicitly set to A are reported as critical.

Examples:
  safe assessment priority 3f2a... --dimension "Housing" --kpi "Affordability" --metric "Rent burden" --priority A`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		priority, _ := cmd.Flags().GetString("priority")
		key := metricKeyFromFlags(cmd)
		if err := mustService().SetPriority(args[0], key, priority); err != nil {
			contract.LogFatal("Cannot set priority", err)
		}
		fmt.Printf("Priority of %s: %s\n", key, strings.ToUpper(priority))
	},
}

var assessmentWeightCmd = &cobra.Command{
	Use:   "weight <id>",
	Short: "Override the weight of a metric or KPI theme",
	Long: `Set the weight of a metric within its KPI theme, or of a KPI theme within its
dimension when --metric is omitted. Weights are relative; they need not sum to 100.
A weight of 0 excludes the entry.

Examples:
  # Weight a metric
  safe assessment weight 3f2a... --dimension Housing --kpi Affordability --metric "Rent burden" --weight 40

  # Weight a KPI theme
  safe assessment weight 3f2a... --dimension Housing --kpi Affordability --weight 60`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		weight, _ := cmd.Flags().GetFloat64("weight")
		key := metricKeyFromFlags(cmd)
		svc := mustService()
		if key.Metric == "" {
			if err := svc.SetKPIWeight(args[0], key.KPIKey(), weight); err != nil {
				contract.LogFatal("Cannot set KPI weight", err)
			}
			fmt.Printf("Weight of %s: %g\n", key.KPIKey(), weight)
			return
		}
		if err := svc.SetMetricWeight(args[0], key, weight); err != nil {
			contract.LogFatal("Cannot set metric weight", err)
		}
		fmt.Printf("Weight of %s: %g\n", key, weight)
	},
}

var assessmentImportCmd = &cobra.Command{
	Use:   "import <id> <state.json>",
	Short: "Replace the state of an assessment with a state document",
	Long: `Import ratings, priorities and weights from a state document, replacing the
current state. Pass "-" to read from stdin.

Current documents must reference only catalog metrics. With --legacy, keys that
match nothing are skipped and listed.

Examples:
  safe assessment import 3f2a... state.json
  safe assessment import 3f2a... browser-export.json --legacy`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, args []string) {
		data, err := readStateFile(args[1])
		if err != nil {
			contract.LogFatal("Cannot import state", err)
		}
		legacy, _ := cmd.Flags().GetBool("legacy")
		res, err := mustService().Import(args[0], data, legacy)
		if err != nil {
			contract.LogFatal("Cannot import state", err)
		}
		fmt.Printf("Imported %d ratings, %d priorities, %d weights\n", res.Ratings, res.Priorities, res.Weights)
		for _, key := range res.Skipped {
			fmt.Printf("  skipped unknown key %q\n", key)
		}
	},
}

var assessmentScoreCmd = &cobra.Command{
	Use:   "score <id>",
	Short: "Evaluate an assessment and record the score",
	Long: `Evaluate the stored state, append the result to the score history and print the report.

Examples:
  safe assessment score 3f2a...
  safe assessment score 3f2a... --detail --naming medal`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		svc := mustService()
		rec, _, err := svc.Show(args[0])
		if err != nil {
			contract.LogFatal("Cannot load assessment", err)
		}
		report, err := svc.Score(args[0], cfg.Engine)
		if err != nil {
			contract.LogFatal("Cannot score assessment", err)
		}
		if err := outwriter.WriteReport(subjectOf(rec), report, cfg); err != nil {
			contract.LogFatal("Cannot write report", err)
		}
	},
}

var assessmentSubmitCmd = &cobra.Command{
	Use:     "submit <id>",
	Short:   "Mark an assessment as submitted",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		rec, err := mustService().Submit(args[0])
		if err != nil {
			contract.LogFatal("Cannot submit assessment", err)
		}
		fmt.Printf("Submitted assessment %s (%s)\n", rec.ID, rec.Collection)
	},
}
