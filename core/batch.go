package core

import (
	"context"
	"runtime"

	"github.com/huangsam/safe/schema"
	"golang.org/x/sync/errgroup"
)

// BatchInput is one snapshot to evaluate, tagged with the caller's identifier.
type BatchInput struct {
	ID    string
	State *schema.AssessmentState
}

// BatchResult pairs an identifier with its report.
type BatchResult struct {
	ID     string        `json:"id"`
	Report schema.Report `json:"report"`
}

// EvaluateBatch evaluates inputs concurrently with at most workers goroutines.
// Results keep input order. Cancelling ctx stops scheduling new evaluations
// and returns the context error.
func EvaluateBatch(ctx context.Context, tax *schema.Taxonomy, inputs []BatchInput, opts schema.EngineOptions, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]BatchResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			state := in.State
			if state == nil {
				state = schema.NewAssessmentState()
			}
			results[i] = BatchResult{ID: in.ID, Report: Evaluate(tax, state, opts)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
