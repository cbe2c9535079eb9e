// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/lilacml/lilac-view/internal/payload"
	"github.com/lilacml/lilac-view/internal/schema"
)

// DirFetcher serves datasets from a directory tree laid out as
// <root>/<namespace>/<dataset>/{schema,rows}.<ext>. The extension is the
// format hint handed to the payload pipeline.
type DirFetcher struct {
	root     string
	pipeline *payload.Pipeline
	logger   *zap.Logger
}

// NewDirFetcher creates a DirFetcher. A nil logger discards logs.
func NewDirFetcher(root string, pipeline *payload.Pipeline, logger *zap.Logger) *DirFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirFetcher{root: root, pipeline: pipeline, logger: logger}
}

// Datasets lists the datasets of a namespace in name order.
func (f *DirFetcher) Datasets(_ context.Context, namespace string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("namespace %q: %w", namespace, ErrNotFound)
		}
		return nil, fmt.Errorf("listing namespace %q: %w", namespace, err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (f *DirFetcher) FetchSchema(ctx context.Context, namespace, dataset string) (*schema.RawField, error) {
	docs, err := f.decodeFile(ctx, namespace, dataset, "schema")
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, fmt.Errorf("dataset %s/%s: schema file holds %d documents, want 1", namespace, dataset, len(docs))
	}
	raw, err := schema.DecodeRawField(docs[0])
	if err != nil {
		return nil, fmt.Errorf("dataset %s/%s: %w", namespace, dataset, err)
	}
	return raw, nil
}

func (f *DirFetcher) FetchRows(ctx context.Context, namespace, dataset string, opts SelectRowsOptions) ([]any, error) {
	rows, err := f.decodeFile(ctx, namespace, dataset, "rows")
	if err != nil {
		return nil, err
	}
	if len(opts.UDFs) > 0 {
		f.logger.Debug("ignoring udf columns", zap.String("dataset", namespace+"/"+dataset), zap.Int("udfs", len(opts.UDFs)))
	}

	filtered := make([]any, 0, len(rows))
	for _, row := range rows {
		ok, err := matchesAll(row, opts.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, row)
		}
	}

	if len(opts.SortBy) > 0 {
		sortRows(filtered, opts.SortBy, opts.SortOrder)
	}

	start := min(max(opts.Offset, 0), len(filtered))
	end := len(filtered)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}
	page := filtered[start:end]

	if len(opts.Columns) > 0 {
		for i, row := range page {
			page[i] = project(row, opts.Columns)
		}
	}
	return page, nil
}

// decodeFile decodes the single <name>.<ext> file of a dataset.
func (f *DirFetcher) decodeFile(ctx context.Context, namespace, dataset, name string) ([]any, error) {
	dir := filepath.Join(f.root, namespace, dataset)
	matches, err := filepath.Glob(filepath.Join(dir, name+".*"))
	if err != nil {
		return nil, fmt.Errorf("dataset %s/%s: %w", namespace, dataset, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("dataset %s/%s: no %s file: %w", namespace, dataset, name, ErrNotFound)
	}
	slices.Sort(matches)
	path := matches[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s/%s: %w", namespace, dataset, err)
	}
	result, err := f.pipeline.DecodeWithMeta(ctx, payload.Source{
		Content: content,
		Format:  strings.TrimPrefix(filepath.Ext(path), "."),
		ID:      path,
	})
	if err != nil {
		return nil, err
	}
	f.logger.Debug("decoded dataset file",
		zap.String("path", path),
		zap.String("decoder", result.DecoderUsed),
		zap.Int("docs", result.DocCount))
	return result.Docs, nil
}

func matchesAll(row any, filters []Filter) (bool, error) {
	for _, filter := range filters {
		values := schema.RawValuesAt(row, filter.Path)
		switch filter.Op {
		case OpEquals:
			if !slices.ContainsFunc(values, func(v any) bool { return compareValues(v, filter.Value) == 0 }) {
				return false, nil
			}
		case OpExists:
			if len(values) == 0 {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter op %q on %s", filter.Op, filter.Path)
		}
	}
	return true, nil
}

func sortRows(rows []any, by []schema.Path, order SortOrder) {
	slices.SortStableFunc(rows, func(a, b any) int {
		for _, path := range by {
			if c := compareValues(firstValue(a, path), firstValue(b, path)); c != 0 {
				if order == SortDesc {
					return -c
				}
				return c
			}
		}
		return 0
	})
}

func firstValue(row any, path schema.Path) any {
	values := schema.RawValuesAt(row, path)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// compareValues orders nil first, then numbers, then strings; anything else
// compares by its printed form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		return cmp.Compare(rank(a), rank(b))
	}
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aNum != bNum:
		return cmp.Compare(rank(a), rank(b))
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func rank(v any) int {
	if v == nil {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	return 2
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// project keeps the top-level keys named by columns, plus the row id and the
// annotations of the kept columns.
func project(row any, columns []schema.Path) any {
	m, ok := row.(map[string]any)
	if !ok {
		return row
	}
	keep := map[string]bool{schema.RowIDKey: true}
	for _, c := range columns {
		if len(c) > 0 {
			keep[c[0]] = true
		}
	}

	out := make(map[string]any, len(keep)+1)
	for k, v := range m {
		if keep[k] {
			out[k] = v
		}
	}
	if annotations, ok := m[schema.AnnotationsKey].(map[string]any); ok {
		kept := map[string]any{}
		for k, v := range annotations {
			if keep[k] {
				kept[k] = v
			}
		}
		if len(kept) > 0 {
			out[schema.AnnotationsKey] = kept
		}
	}
	return out
}
