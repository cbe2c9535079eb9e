// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lilacml/lilac-view/internal/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dataset tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mcp.NewServer(&mcp.Implementation{Name: "lilac-view", Version: version}, nil)
		tool.NewHandlers(newFetcher(), cfg, logger).Register(server)

		logger.Info("serving MCP tools on stdio",
			zap.String("data_dir", cfg.DataDir),
			zap.String("namespace", cfg.Namespace))
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

