// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lilacml/lilac-view/internal/config"
	"github.com/lilacml/lilac-view/internal/dataset"
	"github.com/lilacml/lilac-view/internal/payload/decoders"
	"github.com/lilacml/lilac-view/internal/spans"
)

const testSchema = `
fields:
  __rowid__:
    dtype: string
  text:
    dtype: string
  __lilac__:
    fields:
      text:
        fields:
          pii:
            signal:
              signal_name: pii
            fields:
              emails:
                repeated_field:
                  dtype: string_span
`

const testRows = `{"__rowid__": "a", "text": "mail me at a@b.co", "__lilac__": {"text": {"pii": {"emails": [{"__entity__": {"start": 11, "end": 17}}]}}}}
{"__rowid__": "b", "text": "nothing here"}
`

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "local", "emails")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(testSchema), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.jsonl"), []byte(testRows), 0o600))

	logger := zaptest.NewLogger(t)
	cfg := config.Default()
	cfg.DataDir = root
	return NewHandlers(dataset.NewDirFetcher(root, decoders.NewDefaultPipeline(), logger), cfg, logger)
}

func TestListDatasets(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name        string
		input       InputListDatasets
		wantErr     bool
		errContains string
		want        []string
	}{
		{
			name:  "default namespace",
			input: InputListDatasets{},
			want:  []string{"emails"},
		},
		{
			name:  "explicit namespace",
			input: InputListDatasets{Namespace: "local"},
			want:  []string{"emails"},
		},
		{
			name:        "missing namespace",
			input:       InputListDatasets{Namespace: "other"},
			wantErr:     true,
			errContains: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := h.ListDatasets(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.Equal(t, "local", output.Namespace)
			assert.Equal(t, tt.want, output.Datasets)
		})
	}
}

func TestDescribeSchema(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          InputDescribeSchema
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputDescribeSchema)
	}{
		{
			name:        "dataset is required",
			input:       InputDescribeSchema{},
			wantErr:     true,
			errContains: "dataset is required",
		},
		{
			name:        "unknown dataset",
			input:       InputDescribeSchema{Dataset: "nope"},
			wantErr:     true,
			errContains: "not found",
		},
		{
			name:  "merged signal fields",
			input: InputDescribeSchema{Dataset: "emails"},
			validateOutput: func(t *testing.T, output OutputDescribeSchema) {
				assert.Equal(t, []string{"text"}, output.TextFields)
				assert.Empty(t, output.Labels)
				assert.NotNil(t, output.Labels)

				byPath := map[string]FieldInfo{}
				for _, f := range output.Fields {
					byPath[f.Path] = f
				}
				text, ok := byPath["text"]
				require.True(t, ok)
				assert.Equal(t, "string", text.Dtype)
				assert.True(t, text.IsPetal)

				emails, ok := byPath["__lilac__.text.pii.emails.*"]
				require.True(t, ok)
				assert.Equal(t, "text.pii.emails.*", emails.VisiblePath)
				assert.Equal(t, "string_span", emails.Dtype)
				assert.Equal(t, "pii", emails.Signal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.DescribeSchema(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestRenderDocument(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          InputRenderDocument
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputRenderDocument)
	}{
		{
			name:        "row_id is required",
			input:       InputRenderDocument{Dataset: "emails"},
			wantErr:     true,
			errContains: "dataset and row_id are required",
		},
		{
			name:        "missing row",
			input:       InputRenderDocument{Dataset: "emails", RowID: "zz"},
			wantErr:     true,
			errContains: `row "zz" not found`,
		},
		{
			name:        "field without text",
			input:       InputRenderDocument{Dataset: "emails", RowID: "a", Field: "missing"},
			wantErr:     true,
			errContains: "no text value",
		},
		{
			name:  "span is shown and bolded",
			input: InputRenderDocument{Dataset: "emails", RowID: "a", Hovered: []string{"__lilac__.text.pii.emails.0"}},
			validateOutput: func(t *testing.T, output OutputRenderDocument) {
				assert.Equal(t, "text", output.Field)
				assert.Equal(t, "mail me at a@b.co", output.Text)
				require.Len(t, output.Fragments, 2)

				plain := output.Fragments[0]
				assert.Equal(t, "mail me at ", plain.Text)
				assert.False(t, plain.Shown)
				assert.Empty(t, plain.Paths)

				email := output.Fragments[1]
				assert.Equal(t, "a@b.co", email.Text)
				assert.Equal(t, 11, email.Start)
				assert.Equal(t, 17, email.End)
				assert.Equal(t, []string{"__lilac__.text.pii.emails.0"}, email.Paths)
				assert.True(t, email.Shown)
				assert.True(t, email.Bold)
				assert.True(t, email.Hovered)
				require.Len(t, email.Values, 1)
				assert.Equal(t, string(spans.ValueLeafSpan), email.Values[0].Type)

				assert.False(t, output.SomeHidden)
				assert.Equal(t, []spans.SnippetSpan{
					{Index: 0, Text: "mail me at "},
					{Index: 1, Text: "a@b.co"},
				}, output.Snippet)
			},
		},
		{
			name:  "row without spans",
			input: InputRenderDocument{Dataset: "emails", RowID: "b", Field: "text", Expanded: true},
			validateOutput: func(t *testing.T, output OutputRenderDocument) {
				require.Len(t, output.Fragments, 1)
				assert.Equal(t, "nothing here", output.Fragments[0].Text)
				assert.False(t, output.SomeHidden)
				require.Len(t, output.Snippet, 1)
				assert.Equal(t, "nothing here", output.Snippet[0].Text)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.RenderDocument(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	h := newTestHandlers(t)
	server := mcp.NewServer(&mcp.Implementation{Name: "lilac-view-test", Version: "v0.0.0"}, nil)
	assert.NotPanics(t, func() { h.Register(server) })
}
