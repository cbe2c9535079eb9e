// SPDX-License-Identifier: Apache-2.0

// Package dataset fetches raw schemas and rows and builds their trees.
package dataset

import (
	"context"
	"errors"

	"github.com/lilacml/lilac-view/internal/schema"
)

// ErrNotFound is returned when a dataset or one of its files is missing.
var ErrNotFound = errors.New("not found")

// Filter operators.
const (
	OpEquals = "equals"
	OpExists = "exists"
)

// Filter restricts the rows returned by FetchRows to those holding Value at
// Path.
type Filter struct {
	Path  schema.Path `json:"path"`
	Op    string      `json:"op"`
	Value any         `json:"value,omitempty"`
}

// RowIDFilter selects the row with the given id.
func RowIDFilter(id string) Filter {
	return Filter{Path: schema.Path{schema.RowIDKey}, Op: OpEquals, Value: id}
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// SelectRowsOptions carries the query of a FetchRows call. Fetchers interpret
// it; the tree builders never look at it.
type SelectRowsOptions struct {
	Columns   []schema.Path `json:"columns,omitempty"`
	Filters   []Filter      `json:"filters,omitempty"`
	SortBy    []schema.Path `json:"sort_by,omitempty"`
	SortOrder SortOrder     `json:"sort_order,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Offset    int           `json:"offset,omitempty"`
	// UDFs are computed columns requested alongside the stored ones.
	UDFs []map[string]any `json:"udfs,omitempty"`
}

// Fetcher is the backend a dataset is read from. Rows are returned as
// generically decoded documents shaped like the schema.
type Fetcher interface {
	FetchSchema(ctx context.Context, namespace, dataset string) (*schema.RawField, error)
	FetchRows(ctx context.Context, namespace, dataset string, opts SelectRowsOptions) ([]any, error)
}
