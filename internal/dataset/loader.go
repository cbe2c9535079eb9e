// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lilacml/lilac-view/internal/schema"
)

// Page is one fetched page of a dataset with its trees built.
type Page struct {
	Schema *schema.Field
	Rows   []*schema.ValueNode
}

// Loader fetches schemas and rows from a Fetcher and builds their trees.
// Errors are returned as is; retrying is left to the caller.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLoader creates a Loader. A nil logger discards logs.
func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Schema fetches and builds the schema tree of a dataset.
func (l *Loader) Schema(ctx context.Context, namespace, dataset string) (*schema.Field, error) {
	raw, err := l.fetcher.FetchSchema(ctx, namespace, dataset)
	if err != nil {
		return nil, fmt.Errorf("fetching schema: %w", err)
	}
	return schema.DeserializeSchema(raw)
}

// Load fetches the schema and a page of rows concurrently, then builds the
// trees.
func (l *Loader) Load(ctx context.Context, namespace, dataset string, opts SelectRowsOptions) (*Page, error) {
	var (
		raw  *schema.RawField
		rows []any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = l.fetcher.FetchSchema(gctx, namespace, dataset)
		if err != nil {
			return fmt.Errorf("fetching schema: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = l.fetcher.FetchRows(gctx, namespace, dataset, opts)
		if err != nil {
			return fmt.Errorf("fetching rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.logger.Warn("dataset load failed",
			zap.String("namespace", namespace),
			zap.String("dataset", dataset),
			zap.Error(err))
		return nil, err
	}

	root, err := schema.DeserializeSchema(raw)
	if err != nil {
		return nil, err
	}
	values, err := schema.DeserializeRows(rows, root)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("dataset page loaded",
		zap.String("namespace", namespace),
		zap.String("dataset", dataset),
		zap.Int("rows", len(values)))
	return &Page{Schema: root, Rows: values}, nil
}

// LoadRow loads a single row by id. The returned row is nil when no row has
// that id.
func (l *Loader) LoadRow(ctx context.Context, namespace, dataset, rowID string) (*schema.Field, *schema.ValueNode, error) {
	page, err := l.Load(ctx, namespace, dataset, SelectRowsOptions{
		Filters: []Filter{RowIDFilter(rowID)},
		Limit:   1,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(page.Rows) == 0 {
		l.logger.Debug("row not found", zap.String("row_id", rowID))
		return page.Schema, nil, nil
	}
	return page.Schema, page.Rows[0], nil
}
