// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetadataListDatasets describes the list_datasets tool.
var MetadataListDatasets = &mcp.Tool{
	Name:        "list_datasets",
	Description: "List the datasets available in a namespace.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Dataset namespace. Defaults to the configured namespace.",
			},
		},
	},
}

// InputListDatasets is the input for the ListDatasets tool.
type InputListDatasets struct {
	Namespace string `json:"namespace"`
}

// OutputListDatasets is the output for the ListDatasets tool.
type OutputListDatasets struct {
	Namespace string   `json:"namespace"`
	Datasets  []string `json:"datasets"`
}

func (h *Handlers) ListDatasets(ctx context.Context, _ *mcp.CallToolRequest, input InputListDatasets) (*mcp.CallToolResult, OutputListDatasets, error) {
	ns := h.namespace(input.Namespace)
	names, err := h.catalog.Datasets(ctx, ns)
	if err != nil {
		return nil, OutputListDatasets{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, OutputListDatasets{Namespace: ns, Datasets: names}, nil
}
