package cmd

import (
	"github.com/huangsam/safe/internal/contract"
	"github.com/huangsam/safe/internal/mcp"
	"github.com/huangsam/safe/internal/tracker"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the SAFE MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents score state documents,
categorize scores, read the catalog and evaluate stored assessments.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Stored assessments are optional for the stateless tools
		var svc *tracker.Service
		if s, err := newService(); err == nil {
			svc = s
		} else {
			contract.LogWarn("Assessment tools disabled", err)
		}
		return mcp.StartMCPServer(rootCtx, cfg, taxonomy, svc)
	},
}
