// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Reserved names of the wire format.
const (
	// AnnotationsKey is the top-level field grouping all signal-derived output.
	AnnotationsKey = "__lilac__"
	// RowIDKey holds the unique identifier of a row.
	RowIDKey = "__rowid__"
	// EntityKey wraps the {start, end} offsets of a string span value.
	EntityKey = "__entity__"
	// ValueKey carries the display value of an object that also has children.
	ValueKey = "__value__"
	// DeletedLabelKey marks a label that was removed from the dataset.
	DeletedLabelKey = "__deleted__"
)

// ErrInvalidRow is returned when a raw row is not an object.
var ErrInvalidRow = errors.New("invalid row")

// SchemaError reports a malformed raw schema.
type SchemaError struct {
	Path   Path
	Reason string
}

func (e *SchemaError) Error() string {
	where := Serialize(e.Path)
	if where == "" {
		where = "<root>"
	}
	return fmt.Sprintf("schema error at %s: %s", where, e.Reason)
}

// RawField is the wire shape of a schema node.
type RawField struct {
	Dtype         string               `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Fields        map[string]*RawField `json:"fields,omitempty" yaml:"fields,omitempty"`
	RepeatedField *RawField            `json:"repeated_field,omitempty" yaml:"repeated_field,omitempty"`
	Signal        map[string]any       `json:"signal,omitempty" yaml:"signal,omitempty"`
	Map           map[string]any       `json:"map,omitempty" yaml:"map,omitempty"`
	Cluster       map[string]any       `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Label         string               `json:"label,omitempty" yaml:"label,omitempty"`
	DerivedFrom   []string             `json:"derived_from,omitempty" yaml:"derived_from,omitempty"`
}

// DecodeRawField converts a generically decoded document (nested maps and
// slices, as produced by a JSON or YAML decoder) into a RawField.
func DecodeRawField(v any) (*RawField, error) {
	return decodeRawField(v, Path{})
}

func decodeRawField(v any, path Path) (*RawField, error) {
	m, ok := asMap(v)
	if !ok {
		return nil, &SchemaError{Path: path, Reason: fmt.Sprintf("expected an object, got %T", v)}
	}
	raw := &RawField{}

	switch dtype := m["dtype"].(type) {
	case nil:
	case string:
		raw.Dtype = dtype
	default:
		// Newer payloads wrap the dtype as {type: "..."}.
		dm, ok := asMap(dtype)
		if !ok {
			return nil, &SchemaError{Path: path, Reason: fmt.Sprintf("dtype must be a string, got %T", dtype)}
		}
		t, _ := dm["type"].(string)
		raw.Dtype = t
	}

	if fields := m["fields"]; fields != nil {
		fm, ok := asMap(fields)
		if !ok {
			return nil, &SchemaError{Path: path, Reason: "fields must be an object"}
		}
		raw.Fields = make(map[string]*RawField, len(fm))
		for name, child := range fm {
			rf, err := decodeRawField(child, path.Child(name))
			if err != nil {
				return nil, err
			}
			raw.Fields[name] = rf
		}
	}

	if repeated := m["repeated_field"]; repeated != nil {
		rf, err := decodeRawField(repeated, path.Child(Wildcard))
		if err != nil {
			return nil, err
		}
		raw.RepeatedField = rf
	}

	for key, dst := range map[string]*map[string]any{"signal": &raw.Signal, "map": &raw.Map, "cluster": &raw.Cluster} {
		if m[key] == nil {
			continue
		}
		info, ok := asMap(m[key])
		if !ok {
			return nil, &SchemaError{Path: path, Reason: key + " must be an object"}
		}
		*dst = info
	}

	if label := m["label"]; label != nil {
		s, ok := label.(string)
		if !ok {
			return nil, &SchemaError{Path: path, Reason: "label must be a string"}
		}
		raw.Label = s
	}

	if derived := m["derived_from"]; derived != nil {
		list, ok := derived.([]any)
		if !ok {
			return nil, &SchemaError{Path: path, Reason: "derived_from must be a list"}
		}
		for _, seg := range list {
			s, ok := seg.(string)
			if !ok {
				return nil, &SchemaError{Path: path, Reason: "derived_from segments must be strings"}
			}
			raw.DerivedFrom = append(raw.DerivedFrom, s)
		}
	}
	return raw, nil
}

// RawValuesAt returns every value found at path in an undeserialized row.
// Wildcard segments fan out over list elements.
func RawValuesAt(raw any, path Path) []any {
	x := jp.R()
	for _, seg := range path {
		if seg == Wildcard {
			x = x.W()
		} else {
			x = x.C(seg)
		}
	}
	return x.Get(raw)
}

// asMap normalizes the two map shapes YAML decoders produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

// asInt converts the numeric types JSON and YAML decoders produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case int32:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}

// asFloat is asInt for floating point consumers.
func asFloat(v any) (float64, bool) {
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
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
