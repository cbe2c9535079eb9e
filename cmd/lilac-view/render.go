// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lilacml/lilac-view/internal/dataset"
	"github.com/lilacml/lilac-view/internal/payload"
	"github.com/lilacml/lilac-view/internal/payload/decoders"
	"github.com/lilacml/lilac-view/internal/schema"
	"github.com/lilacml/lilac-view/internal/signals"
	"github.com/lilacml/lilac-view/internal/spans"
)

var (
	renderField    string
	renderExpanded bool
	renderFile     string
	renderFormat   string
	renderKeywords []string
)

var renderCmd = &cobra.Command{
	Use:   "render [dataset] [row-id]",
	Short: "Render a text field of a row as a snippet",
	Long: `Render one text field of a dataset row. The spans of every signal run on the
field are merged into fragments; fragments worth showing are kept with some
context and the rest collapses into "...".

Use --file to render the sections of a plain Markdown or text file instead.
--keyword runs a substring search over the text before rendering, so every
match shows up as a bold span.`,
	Example: `  lilac-view render reviews 42
  lilac-view render reviews 42 --field text --expanded
  lilac-view render --file policy.md --keyword must --keyword shall
  lilac-view render --file notes.md --format yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if renderFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderField, "field", "f", "", "Dot-separated text field path (default: first text field with spans)")
	renderCmd.Flags().BoolVar(&renderExpanded, "expanded", false, "Print the whole text instead of a snippet")
	renderCmd.Flags().StringVar(&renderFile, "file", "", "Render a Markdown or text file instead of a dataset row")
	renderCmd.Flags().StringVar(&renderFormat, "format", "text", "Output format: text, yaml or json")
	renderCmd.Flags().StringArrayVarP(&renderKeywords, "keyword", "k", nil, "Highlight occurrences of a keyword (repeatable)")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := spans.RenderOptions{Expanded: renderExpanded, Config: cfg.Snippet}

	var docs []*spans.Document
	var err error
	if renderFile != "" {
		docs, err = renderSections(ctx, renderFile, renderKeywords, opts)
	} else {
		var doc *spans.Document
		doc, err = renderRow(ctx, args[0], args[1], renderKeywords, opts)
		docs = []*spans.Document{doc}
	}
	if err != nil {
		return err
	}
	return writeDocuments(cmd.OutOrStdout(), docs, renderFormat)
}

func renderRow(ctx context.Context, name, rowID string, keywords []string, opts spans.RenderOptions) (*spans.Document, error) {
	fetcher := newFetcher()
	raw, err := fetcher.FetchSchema(ctx, cfg.Namespace, name)
	if err != nil {
		return nil, err
	}
	rows, err := fetcher.FetchRows(ctx, cfg.Namespace, name, dataset.SelectRowsOptions{
		Filters: []dataset.Filter{dataset.RowIDFilter(rowID)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("row %q not found in %s/%s", rowID, cfg.Namespace, name)
	}

	root, err := schema.DeserializeSchema(raw)
	if err != nil {
		return nil, err
	}
	var path schema.Path
	if renderField != "" {
		path = schema.Deserialize(renderField)
	} else {
		paths := spans.TextPaths(root)
		if len(paths) == 0 && len(keywords) == 0 {
			return nil, fmt.Errorf("--field is required: %s/%s has no text field with spans", cfg.Namespace, name)
		}
		if len(paths) > 0 {
			path = paths[0]
		}
	}
	if len(keywords) > 0 {
		if len(path) == 0 {
			return nil, fmt.Errorf("--field is required with --keyword")
		}
		if err := signals.Annotate(raw, rows, path, signals.NewSubstringSearch(keywords...)); err != nil {
			return nil, err
		}
		if root, err = schema.DeserializeSchema(raw); err != nil {
			return nil, err
		}
	}
	row, err := schema.DeserializeRow(rows[0], root)
	if err != nil {
		return nil, err
	}

	logger.Debug("rendering row",
		zap.String("dataset", cfg.Namespace+"/"+name),
		zap.String("row_id", rowID),
		zap.String("field", schema.Serialize(path)),
		zap.Strings("keywords", keywords))
	return spans.RenderDocument(root, row, path, opts)
}

// renderSections renders every section of a Markdown or text file.
func renderSections(ctx context.Context, file string, keywords []string, opts spans.RenderOptions) ([]*spans.Document, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	rows, err := decoders.NewMarkdownDecoder().Decode(ctx, payload.Source{
		Content: content,
		Format:  strings.TrimPrefix(filepath.Ext(file), "."),
		ID:      filepath.Base(file),
	})
	if err != nil {
		return nil, err
	}
	raw := decoders.MarkdownSchema()
	if len(keywords) > 0 {
		err = signals.Annotate(raw, rows, schema.Path{decoders.TextField}, signals.NewSubstringSearch(keywords...))
		if err != nil {
			return nil, err
		}
	}
	root, err := schema.DeserializeSchema(raw)
	if err != nil {
		return nil, err
	}
	values, err := schema.DeserializeRows(rows, root)
	if err != nil {
		return nil, err
	}

	docs := make([]*spans.Document, 0, len(values))
	for _, row := range values {
		doc, err := spans.RenderDocument(root, row, schema.Path{decoders.TextField}, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func writeDocuments(w io.Writer, docs []*spans.Document, format string) error {
	switch format {
	case "text":
		for i, doc := range docs {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, snippetText(doc.Snippet))
		}
		return nil
	case "yaml", "json":
		var opts []yaml.EncodeOption
		if format == "json" {
			opts = append(opts, yaml.JSON())
		}
		out, err := yaml.MarshalWithOptions(docs, opts...)
		if err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown format %q: use text, yaml or json", format)
	}
}

func snippetText(snippet []spans.SnippetSpan) string {
	var sb strings.Builder
	for _, s := range snippet {
		if s.IsEllipsis {
			sb.WriteString("...")
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}
