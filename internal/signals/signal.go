// SPDX-License-Identifier: Apache-2.0

// Package signals computes span annotations over text fields and stores them
// in the annotations subtree of a dataset, the way signal output is shipped.
package signals

import (
	"fmt"

	"github.com/lilacml/lilac-view/internal/schema"
)

// SignalNameKey is the key of the signal name in a field's signal info.
const SignalNameKey = "signal_name"

// Signal computes string spans over a text value.
type Signal interface {
	Name() string
	// Info is stored as the signal info of the output field.
	Info() map[string]any
	Compute(text string) []schema.Span
}

// Annotate runs sig over the string at field in every row. Spans are written
// to __lilac__.<field>.<name> in each row and the output field is added to raw.
// Rows whose field is missing or not a string get no annotation.
func Annotate(raw *schema.RawField, rows []any, field schema.Path, sig Signal) error {
	if len(field) == 0 {
		return fmt.Errorf("signal %s: field path is empty", sig.Name())
	}
	for _, seg := range field {
		if seg == schema.Wildcard {
			return fmt.Errorf("signal %s: repeated field %q is not supported", sig.Name(), schema.Serialize(field))
		}
	}
	if field[0] == schema.AnnotationsKey {
		return fmt.Errorf("signal %s: cannot annotate derived field %q", sig.Name(), schema.Serialize(field))
	}

	parent := rawChild(raw, schema.AnnotationsKey)
	for _, seg := range field {
		parent = rawChild(parent, seg)
	}
	parent.Fields[sig.Name()] = &schema.RawField{
		Signal:        sig.Info(),
		RepeatedField: &schema.RawField{Dtype: string(schema.DtypeStringSpan)},
	}

	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			return fmt.Errorf("row %d: %w: expected an object, got %T", i, schema.ErrInvalidRow, row)
		}
		text, ok := stringAt(m, field)
		if !ok {
			continue
		}
		spans := sig.Compute(text)
		values := make([]any, 0, len(spans))
		for _, s := range spans {
			values = append(values, map[string]any{
				schema.EntityKey: map[string]any{"start": s.Start, "end": s.End},
			})
		}
		out := mapChild(m, schema.AnnotationsKey)
		for _, seg := range field {
			out = mapChild(out, seg)
		}
		out[sig.Name()] = values
	}
	return nil
}

func rawChild(f *schema.RawField, name string) *schema.RawField {
	if f.Fields == nil {
		f.Fields = map[string]*schema.RawField{}
	}
	child, ok := f.Fields[name]
	if !ok {
		child = &schema.RawField{}
		f.Fields[name] = child
	}
	if child.Fields == nil {
		child.Fields = map[string]*schema.RawField{}
	}
	return child
}

func mapChild(m map[string]any, name string) map[string]any {
	child, ok := m[name].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[name] = child
	}
	return child
}

func stringAt(m map[string]any, path schema.Path) (string, bool) {
	var v any = m
	for _, seg := range path {
		next, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		v = next[seg]
	}
	s, ok := v.(string)
	return s, ok
}
