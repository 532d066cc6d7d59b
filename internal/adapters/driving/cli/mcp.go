package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drewfsc/saturday-night/internal/adapters/driving/mcp"
	"github.com/drewfsc/saturday-night/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio and can be used with any
MCP-compatible AI assistant.

Use --port to start an HTTP server instead, which serves:
  /mcp      - streamable MCP transport
  /rpc      - plain JSON-RPC envelopes (initialize, tools/list, tools/call)
  /metrics  - Prometheus metrics

Changes to config.toml are applied without a restart unless --no-watch is set.

Examples:
  # Stdio mode (default)
  saturday-night mcp serve

  # HTTP mode
  saturday-night mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "saturday-night": {
        "command": "/path/to/saturday-night",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("no-watch", false, "do not reload when the config file changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	noWatch, _ := cmd.Flags().GetBool("no-watch")

	s, err := requireServices(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Dispatcher: s.Dispatcher,
		Settings:   s.Settings,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if s.Watch != nil && !noWatch {
		go func() {
			if err := s.Watch(ctx); err != nil {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
