// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lilacml/lilac-view/internal/schema"
	"github.com/lilacml/lilac-view/internal/spans"
)

// MetadataDescribeSchema describes the describe_schema tool.
var MetadataDescribeSchema = &mcp.Tool{
	Name: "describe_schema",
	Description: "Describe the schema of a dataset after signal output has been merged into the " +
		"source fields. Each field lists its path, the path it is displayed under, its dtype and " +
		"the signal, map or label that produced it. text_fields lists the string fields carrying " +
		"spans, which render_document can display.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"dataset"},
		"properties": map[string]interface{}{
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Dataset namespace. Defaults to the configured namespace.",
			},
			"dataset": map[string]interface{}{
				"type":        "string",
				"description": "Dataset name.",
			},
		},
	},
}

// InputDescribeSchema is the input for the DescribeSchema tool.
type InputDescribeSchema struct {
	Namespace string `json:"namespace"`
	Dataset   string `json:"dataset"`
}

// FieldInfo is one schema field.
type FieldInfo struct {
	Path        string `json:"path"`
	VisiblePath string `json:"visible_path"`
	Dtype       string `json:"dtype,omitempty"`
	Signal      string `json:"signal,omitempty"`
	Map         string `json:"map,omitempty"`
	Label       string `json:"label,omitempty"`
	IsPetal     bool   `json:"is_petal"`
}

// OutputDescribeSchema is the output for the DescribeSchema tool.
type OutputDescribeSchema struct {
	Fields     []FieldInfo `json:"fields"`
	TextFields []string    `json:"text_fields"`
	Labels     []string    `json:"labels"`
}

func (h *Handlers) DescribeSchema(ctx context.Context, _ *mcp.CallToolRequest, input InputDescribeSchema) (*mcp.CallToolResult, OutputDescribeSchema, error) {
	if input.Dataset == "" {
		return nil, OutputDescribeSchema{}, fmt.Errorf("dataset is required")
	}
	root, err := h.loader.Schema(ctx, h.namespace(input.Namespace), input.Dataset)
	if err != nil {
		return nil, OutputDescribeSchema{}, err
	}
	return nil, describe(root), nil
}

func describe(root *schema.Field) OutputDescribeSchema {
	petals := map[*schema.Field]bool{}
	for _, f := range schema.Petals(root) {
		petals[f] = true
	}

	out := OutputDescribeSchema{
		Fields:     []FieldInfo{},
		TextFields: []string{},
		Labels:     []string{},
	}
	for _, f := range schema.ChildFields(root) {
		info := FieldInfo{
			Path:        schema.Serialize(f.Path),
			VisiblePath: schema.Serialize(f.VisiblePath()),
			Dtype:       string(f.Dtype),
			Signal:      schema.SignalName(f),
			Label:       schema.Label(f),
			IsPetal:     petals[f],
		}
		if m := schema.MapInfo(f); m != nil {
			info.Map, _ = m["fn_name"].(string)
		}
		out.Fields = append(out.Fields, info)
	}
	for _, p := range spans.TextPaths(root) {
		out.TextFields = append(out.TextFields, schema.Serialize(p))
	}
	out.Labels = append(out.Labels, schema.SchemaLabels(root)...)
	return out
}
