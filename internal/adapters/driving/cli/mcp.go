package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can request
policies through the same safety shield.

Tools:
  generate_policy   run a request through the shield
  list_evaluations  list recorded evaluations

Resources:
  policyshield://guardrails                 active deny lists
  policyshield://evaluations/{evaluationId} a recorded evaluation

By default the server communicates over stdio using JSON-RPC. Use --port to
serve streamable HTTP instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  policyshield mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  policyshield mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "policyshield": {
        "command": "/path/to/policyshield",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Shield:  svc.Shield,
		History: svc.History,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout is free in HTTP mode; in stdio mode it carries JSON-RPC.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
