package commands

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/trace/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the journal to agents over MCP (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		return server.ServeStdio(mcp.NewServer(rt.store, rt.cal, rt.cfg.MondayStart()))
	},
}
