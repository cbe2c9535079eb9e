// SPDX-License-Identifier: Apache-2.0

// Package tool exposes dataset browsing and document rendering as MCP tools.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lilacml/lilac-view/internal/config"
	"github.com/lilacml/lilac-view/internal/dataset"
)

// Catalog is a dataset backend that can also enumerate its datasets.
type Catalog interface {
	dataset.Fetcher
	Datasets(ctx context.Context, namespace string) ([]string, error)
}

// Handlers holds the state shared by the tool handlers.
type Handlers struct {
	catalog Catalog
	loader  *dataset.Loader
	cfg     config.Config
	logger  *zap.Logger
}

// NewHandlers creates the tool handlers over a catalog. A nil logger discards
// logs.
func NewHandlers(catalog Catalog, cfg config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog: catalog,
		loader:  dataset.NewLoader(catalog, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Register adds every tool to the server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataListDatasets, h.ListDatasets)
	mcp.AddTool(server, MetadataDescribeSchema, h.DescribeSchema)
	mcp.AddTool(server, MetadataRenderDocument, h.RenderDocument)
}

func (h *Handlers) namespace(ns string) string {
	if ns == "" {
		return h.cfg.Namespace
	}
	return ns
}
