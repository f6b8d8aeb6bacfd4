// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/huangsam/safe/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the SAFE MCP server without starting it.
// svc may be nil when no assessment store is configured.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, tax *schema.Taxonomy, svc *tracker.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"SAFE Assessment Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		tax:     tax,
		svc:     svc,
	}

	policyOptions := []mcp.ToolOption{
		mcp.WithString("completion_policy", mcp.Description("Completion measure (simple, fieldWeighted). Defaults to the server configuration."),
			mcp.Enum(string(schema.SimpleCompletion), string(schema.FieldWeightedCompletion))),
		mcp.WithString("critical_policy", mcp.Description("Critical metric selection (full, bottomDecile)."),
			mcp.Enum(string(schema.FullCritical), string(schema.BottomDecileCritical))),
		mcp.WithString("naming", mcp.Description("Category label scheme (standard, medal)."),
			mcp.Enum(string(schema.StandardNaming), string(schema.MedalNaming))),
	}

	// --- 1. Tool: score_state ---
	s.AddTool(mcp.NewTool("score_state", append([]mcp.ToolOption{
		mcp.WithDescription("Score an assessment state document and return the full report."),
		mcp.WithString("state", mcp.Description("Assessment state as JSON."), mcp.Required()),
		mcp.WithBoolean("legacy", mcp.Description("Read the legacy joined-key format.")),
	}, policyOptions...)...), h.handleScoreState)

	// --- 2. Tool: categorize_score ---
	s.AddTool(mcp.NewTool("categorize_score",
		mcp.WithDescription("Map an overall score on the 0-5 scale to its performance category."),
		mcp.WithNumber("score", mcp.Description("Overall score between 0 and 5."), mcp.Required()),
		mcp.WithString("naming", mcp.Description("Category label scheme (standard, medal)."),
			mcp.Enum(string(schema.StandardNaming), string(schema.MedalNaming))),
	), h.handleCategorizeScore)

	// --- 3. Tool: get_catalog ---
	s.AddTool(mcp.NewTool("get_catalog",
		mcp.WithDescription("List the dimensions of the metric catalog with KPI and metric counts."),
		mcp.WithBoolean("detail", mcp.Description("Return the full taxonomy including every metric.")),
	), h.handleGetCatalog)

	// --- 4. Tool: get_assessment_report ---
	s.AddTool(mcp.NewTool("get_assessment_report", append([]mcp.ToolOption{
		mcp.WithDescription("Evaluate a stored assessment without recording a score."),
		mcp.WithString("id", mcp.Description("Assessment ID."), mcp.Required()),
	}, policyOptions...)...), h.handleGetAssessmentReport)

	return s
}

// StartMCPServer starts the SAFE MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, tax *schema.Taxonomy, svc *tracker.Service) error {
	s := NewMCPServer(baseCfg, tax, svc)
	return server.ServeStdio(s)
}
