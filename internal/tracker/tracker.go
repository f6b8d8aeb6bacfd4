// Package tracker manages stored assessments: their metadata, the state users
// edit and the score history produced by the engine.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/safe/core"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
	"github.com/huangsam/safe/schema"
	"go.uber.org/zap"
)

// Errors returned for rejected edits.
var (
	ErrCityRequired  = errors.New("city is required")
	ErrInvalidRating = fmt.Errorf("rating must be between %d and %d", schema.MinRating, schema.MaxRating)
	ErrInvalidWeight = errors.New("weight must be a finite number >= 0")

	ErrAlreadySubmitted = errors.New("assessment is already submitted")
)

// Service coordinates the taxonomy, the stores and the scoring engine.
type Service struct {
	tax         *schema.Taxonomy
	states      contract.StateStore
	assessments contract.AssessmentStore

	now   func() time.Time
	newID func() string
}

// NewService builds a Service from the stores held by mgr.
func NewService(tax *schema.Taxonomy, mgr contract.StoreManager) (*Service, error) {
	if tax == nil {
		return nil, errors.New("taxonomy is required")
	}
	if mgr == nil {
		return nil, errors.New("store manager is required")
	}
	states := mgr.GetStateStore()
	if states == nil {
		return nil, errors.New("state store is not initialized")
	}
	assessments := mgr.GetAssessmentStore()
	if assessments == nil {
		return nil, errors.New("assessment store is not initialized")
	}
	return &Service{
		tax:         tax,
		states:      states,
		assessments: assessments,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// Taxonomy returns the taxonomy the service validates against.
func (s *Service) Taxonomy() *schema.Taxonomy {
	return s.tax
}

// CreateInput holds the respondent details of a new assessment.
type CreateInput struct {
	RespondentName string
	Organisation   string
	City           string
	Borough        string
	Ward           string
}

// Create registers a new draft assessment with an empty state.
func (s *Service) Create(in CreateInput) (schema.AssessmentRecord, error) {
	city := strings.TrimSpace(in.City)
	if city == "" {
		return schema.AssessmentRecord{}, ErrCityRequired
	}

	now := s.now().UTC()
	rec := schema.AssessmentRecord{
		ID:             s.newID(),
		RespondentName: strings.TrimSpace(in.RespondentName),
		Organisation:   strings.TrimSpace(in.Organisation),
		City:           city,
		Borough:        strings.TrimSpace(in.Borough),
		Ward:           strings.TrimSpace(in.Ward),
		Collection:     schema.CollectionFor(city),
		Status:         schema.DraftStatus,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.assessments.CreateAssessment(rec); err != nil {
		return schema.AssessmentRecord{}, err
	}
	if err := persist.SaveState(s.states, rec.ID, schema.NewAssessmentState(), now); err != nil {
		return schema.AssessmentRecord{}, err
	}

	contract.Logger().Info("assessment created",
		zap.String("id", rec.ID),
		zap.String("collection", rec.Collection))
	return rec, nil
}

// List returns assessments matching filter, oldest first.
func (s *Service) List(filter schema.AssessmentFilter) ([]schema.AssessmentRecord, error) {
	return s.assessments.ListAssessments(filter)
}

// Show returns an assessment and its current state.
func (s *Service) Show(id string) (schema.AssessmentRecord, *schema.AssessmentState, error) {
	rec, err := s.assessments.GetAssessment(id)
	if err != nil {
		return rec, nil, err
	}
	state, err := persist.LoadState(s.states, id)
	if err != nil {
		return rec, nil, err
	}
	return rec, state, nil
}

// History returns the score records of an assessment in the order they were taken.
func (s *Service) History(id string) ([]schema.ScoreRecord, error) {
	if _, err := s.assessments.GetAssessment(id); err != nil {
		return nil, err
	}
	return s.assessments.ListScores(id)
}

// Rate sets the rating of one metric.
func (s *Service) Rate(id string, key schema.MetricKey, rating int) error {
	if rating < schema.MinRating || rating > schema.MaxRating {
		return fmt.Errorf("%w, got %d", ErrInvalidRating, rating)
	}
	if _, err := s.tax.ResolveMetric(key); err != nil {
		return err
	}
	return s.update(id, func(st *schema.AssessmentState) error {
		st.Ratings.Set(key, rating)
		return nil
	})
}

// SetPriority overrides the priority of one metric.
func (s *Service) SetPriority(id string, key schema.MetricKey, priority string) error {
	p, ok := schema.ParsePriority(priority)
	if !ok {
		return fmt.Errorf("invalid priority %q: must be A, B or C", priority)
	}
	if _, err := s.tax.ResolveMetric(key); err != nil {
		return err
	}
	return s.update(id, func(st *schema.AssessmentState) error {
		st.Priorities.Set(key, p)
		return nil
	})
}

// SetMetricWeight overrides the weight of one metric within its KPI theme.
func (s *Service) SetMetricWeight(id string, key schema.MetricKey, weight float64) error {
	if err := validateWeight(weight); err != nil {
		return err
	}
	if _, err := s.tax.ResolveMetric(key); err != nil {
		return err
	}
	return s.update(id, func(st *schema.AssessmentState) error {
		st.Weights.Metrics.Set(key, weight)
		return nil
	})
}

// SetKPIWeight overrides the weight of one KPI theme within its dimension.
func (s *Service) SetKPIWeight(id string, key schema.KPIKey, weight float64) error {
	if err := validateWeight(weight); err != nil {
		return err
	}
	if err := s.tax.ResolveKPI(key); err != nil {
		return err
	}
	return s.update(id, func(st *schema.AssessmentState) error {
		st.Weights.KPIs.Set(key, weight)
		return nil
	})
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidWeight, w)
	}
	return nil
}

// ImportResult reports what an import did.
type ImportResult struct {
	Ratings    int      `json:"ratings"`
	Priorities int      `json:"priorities"`
	Weights    int      `json:"weights"`
	Skipped    []string `json:"skipped,omitempty"` // legacy keys that matched nothing
}

// Import replaces the state of an assessment with a state document.
// Legacy documents use joined keys; keys that match nothing are skipped and reported.
// Current documents must reference only known metrics and valid ratings.
func (s *Service) Import(id string, data []byte, legacy bool) (ImportResult, error) {
	state, skipped, err := DecodeState(s.tax, data, legacy)
	if err != nil {
		return ImportResult{}, err
	}

	err = s.update(id, func(st *schema.AssessmentState) error {
		*st = *state
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{
		Ratings:    state.Ratings.Len(),
		Priorities: state.Priorities.Len(),
		Weights:    state.Weights.Metrics.Len() + state.Weights.KPIs.Len(),
		Skipped:    skipped,
	}
	if len(skipped) > 0 {
		contract.Logger().Warn("legacy import skipped unknown keys",
			zap.String("id", id),
			zap.Strings("keys", skipped))
	}
	return res, nil
}

// DecodeState reads a state document and checks it against tax.
func DecodeState(tax *schema.Taxonomy, data []byte, legacy bool) (*schema.AssessmentState, []string, error) {
	if legacy {
		imp, err := schema.DecodeLegacyState(data, tax)
		if err != nil {
			return nil, nil, err
		}
		if err := validateState(tax, imp.State); err != nil {
			return nil, nil, err
		}
		return imp.State, imp.Unknown, nil
	}

	state := schema.NewAssessmentState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, nil, fmt.Errorf("invalid state document: %w", err)
	}
	if err := validateState(tax, state); err != nil {
		return nil, nil, err
	}
	return state, nil, nil
}

// validateState checks every key and value of a state against the taxonomy.
// A stored zero rating is accepted and counts as unrated.
func validateState(tax *schema.Taxonomy, st *schema.AssessmentState) error {
	var errs []error
	st.Ratings.Each(func(k schema.MetricKey, v int) {
		if _, err := tax.ResolveMetric(k); err != nil {
			errs = append(errs, err)
		} else if v != 0 && (v < schema.MinRating || v > schema.MaxRating) {
			errs = append(errs, fmt.Errorf("%w for %s, got %d", ErrInvalidRating, k, v))
		}
	})
	st.Priorities.Each(func(k schema.MetricKey, _ schema.Priority) {
		if _, err := tax.ResolveMetric(k); err != nil {
			errs = append(errs, err)
		}
	})
	st.Weights.Metrics.Each(func(k schema.MetricKey, w float64) {
		if _, err := tax.ResolveMetric(k); err != nil {
			errs = append(errs, err)
		} else if err := validateWeight(w); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	})
	st.Weights.KPIs.Each(func(k schema.KPIKey, w float64) {
		if err := tax.ResolveKPI(k); err != nil {
			errs = append(errs, err)
		} else if err := validateWeight(w); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	})
	return errors.Join(errs...)
}

// update loads the state, applies fn, then saves it and bumps the record.
func (s *Service) update(id string, fn func(*schema.AssessmentState) error) error {
	if _, err := s.assessments.GetAssessment(id); err != nil {
		return err
	}
	state, err := persist.LoadState(s.states, id)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}

	now := s.now().UTC()
	if err := persist.SaveState(s.states, id, state, now); err != nil {
		return err
	}
	return s.assessments.TouchAssessment(id, now)
}

// Report evaluates the stored state of an assessment without recording it.
func (s *Service) Report(id string, opts schema.EngineOptions) (schema.Report, error) {
	_, state, err := s.Show(id)
	if err != nil {
		return schema.Report{}, err
	}
	return core.Evaluate(s.tax, state, opts), nil
}

// Score evaluates the stored state of an assessment and records the result.
func (s *Service) Score(id string, opts schema.EngineOptions) (schema.Report, error) {
	report, err := s.Report(id, opts)
	if err != nil {
		return schema.Report{}, err
	}

	scoreID, err := s.record(id, report)
	if err != nil {
		return schema.Report{}, err
	}

	contract.Logger().Info("assessment scored",
		zap.String("id", id),
		zap.Int64("score_id", scoreID),
		zap.Float64("overall", report.Scores.Overall),
		zap.Int("completion", report.Completion),
		zap.String("category", report.Category.Label))
	return report, nil
}

// record appends a score record built from report.
func (s *Service) record(id string, report schema.Report) (int64, error) {
	blob, err := json.Marshal(report.Scores)
	if err != nil {
		return 0, fmt.Errorf("failed to encode scores: %w", err)
	}
	return s.assessments.RecordScore(schema.ScoreRecord{
		AssessmentID:     id,
		ScoredAt:         s.now().UTC(),
		Overall:          report.Scores.Overall,
		Completion:       int32(report.Completion),
		CompletionPolicy: report.CompletionPolicy,
		Category:         report.Category.Label,
		CriticalCount:    int32(len(report.CriticalMetrics)),
		DimensionScores:  string(blob),
	})
}

// Submit marks an assessment as submitted.
func (s *Service) Submit(id string) (schema.AssessmentRecord, error) {
	rec, err := s.assessments.GetAssessment(id)
	if err != nil {
		return rec, err
	}
	if rec.Status == schema.SubmittedStatus {
		return rec, fmt.Errorf("%w: %s", ErrAlreadySubmitted, id)
	}
	now := s.now().UTC()
	if err := s.assessments.UpdateStatus(id, schema.SubmittedStatus, now); err != nil {
		return rec, err
	}
	rec.Status = schema.SubmittedStatus
	rec.UpdatedAt = now

	contract.Logger().Info("assessment submitted", zap.String("id", id))
	return rec, nil
}

// BatchEntry is one row of a batch report.
type BatchEntry struct {
	Assessment schema.AssessmentRecord `json:"assessment"`
	Report     schema.Report           `json:"report"`
}

// Batch evaluates every assessment matching filter concurrently. Nothing is recorded.
func (s *Service) Batch(ctx context.Context, filter schema.AssessmentFilter, opts schema.EngineOptions, workers int) ([]BatchEntry, error) {
	recs, err := s.assessments.ListAssessments(filter)
	if err != nil {
		return nil, err
	}

	inputs := make([]core.BatchInput, 0, len(recs))
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := persist.LoadState(s.states, rec.ID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, core.BatchInput{ID: rec.ID, State: state})
	}

	start := s.now()
	results, err := core.EvaluateBatch(ctx, s.tax, inputs, opts, workers)
	if err != nil {
		return nil, err
	}
	contract.Logger().Debug("batch evaluated",
		zap.Int("assessments", len(results)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", s.now().Sub(start)))

	entries := make([]BatchEntry, len(results))
	for i, r := range results {
		entries[i] = BatchEntry{Assessment: recs[i], Report: r.Report}
	}
	return entries, nil
}
