package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/clockme/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio for the project
found from the working directory (or --root). Configure a client with:

  {
    "mcpServers": {
      "clock-me": { "command": "clock-me", "args": ["mcp", "--root", "/path/to/project"] }
    }
  }

Available tools: clock_status, clock_in, clock_out, clock_break,
clock_resume, clock_history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol.
		ui.Out = ui.ErrOut

		svc, err := getService()
		if err != nil {
			return err
		}
		return mcp.NewServer(svc, buildVersion).ServeStdio(cmdContext(cmd))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
