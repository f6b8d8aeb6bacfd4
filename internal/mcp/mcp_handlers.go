package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/safe/core"
	"github.com/huangsam/safe/internal/catalog"
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/persist"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/huangsam/safe/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	tax     *schema.Taxonomy
	svc     *tracker.Service
}

// engineOptions overlays request arguments on the configured engine options.
func (h *toolHandler) engineOptions(request mcp.CallToolRequest) (schema.EngineOptions, error) {
	opts := h.baseCfg.Clone().Engine
	if v := request.GetString("completion_policy", ""); v != "" {
		p := schema.CompletionPolicy(v)
		if _, ok := schema.ValidCompletionPolicies[p]; !ok {
			return opts, fmt.Errorf("invalid completion_policy %q", v)
		}
		opts.CompletionPolicy = p
	}
	if v := request.GetString("critical_policy", ""); v != "" {
		p := schema.CriticalPolicy(v)
		if _, ok := schema.ValidCriticalPolicies[p]; !ok {
			return opts, fmt.Errorf("invalid critical_policy %q", v)
		}
		opts.CriticalPolicy = p
	}
	if v := request.GetString("naming", ""); v != "" {
		n := schema.NamingScheme(v)
		if _, ok := schema.ValidNamingSchemes[n]; !ok {
			return opts, fmt.Errorf("invalid naming %q", v)
		}
		opts.Naming = n
	}
	return opts, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScoreState(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("state", "")
	if raw == "" {
		return mcp.NewToolResultError("state is required"), nil
	}
	opts, err := h.engineOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, unknown, err := tracker.DecodeState(h.tax, []byte(raw), request.GetBool("legacy", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid state: %v", err)), nil
	}

	return jsonResult(struct {
		schema.Report
		SkippedKeys []string `json:"skippedKeys,omitempty"`
	}{Report: core.Evaluate(h.tax, state, opts), SkippedKeys: unknown})
}

func (h *toolHandler) handleCategorizeScore(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score := request.GetFloat("score", math.NaN())
	if math.IsNaN(score) || score < 0 || score > schema.MaxRating {
		return mcp.NewToolResultError(fmt.Sprintf("score must be between 0 and %d", schema.MaxRating)), nil
	}
	opts, err := h.engineOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(core.Categorize(score, opts.Naming))
}

func (h *toolHandler) handleGetCatalog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetBool("detail", false) {
		return jsonResult(h.tax)
	}
	return jsonResult(catalog.Summarize(h.tax))
}

func (h *toolHandler) handleGetAssessmentReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.svc == nil {
		return mcp.NewToolResultError("assessment store is not configured"), nil
	}
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	opts, err := h.engineOptions(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := h.svc.Report(id, opts)
	if errors.Is(err, persist.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("assessment %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(report)
}
