// SPDX-License-Identifier: Apache-2.0

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilacml/lilac-view/internal/schema"
)

func fieldPaths(fields []*schema.Field) []schema.Path {
	out := make([]schema.Path, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Path)
	}
	return out
}

func TestChildFields(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	fields := schema.ChildFields(root)
	require.NotEmpty(t, fields)

	assert.Equal(t, schema.Path{"__rowid__"}, fields[0].Path, "children come in name order")
	assert.Equal(t, schema.DtypeString, fields[0].Dtype)

	paths := fieldPaths(fields)
	assert.Contains(t, paths, schema.Path{"title"})
	assert.Contains(t, paths, schema.Path{"complex_list_of_struct", "*"})
	assert.Contains(t, paths, schema.Path{"complex_list_of_struct", "*", "propertyA"})
	assert.Contains(t, paths, schema.Path{"__lilac__", "comment_text", "pii", "emails", "*"})
	assert.NotContains(t, paths, schema.Path{})

	// Pre-order: a parent always precedes its children.
	index := map[string]int{}
	for i, f := range fields {
		index[f.Path.String()] = i
	}
	assert.Less(t, index["complex_list_of_struct"], index["complex_list_of_struct.*"])
	assert.Less(t, index["complex_list_of_struct.*"], index["complex_list_of_struct.*.propertyA"])
	assert.Less(t, index["comment_text"], index["__lilac__.comment_text.pii"])
}

func TestPetals(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	paths := fieldPaths(schema.Petals(root))

	assert.Contains(t, paths, schema.Path{"title"})
	assert.Contains(t, paths, schema.Path{"comment_text"}, "a source field with merged signal children is still a petal")
	assert.Contains(t, paths, schema.Path{"tags", "*"})
	assert.NotContains(t, paths, schema.Path{"complex_field"})
	assert.NotContains(t, paths, schema.Path{"tags"})
	assert.Nil(t, schema.Petals(nil))
}

func TestFieldsByDtype(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	spans := schema.FieldsByDtype(root, schema.DtypeStringSpan)
	require.Len(t, spans, 1)
	assert.Equal(t, schema.Path{"__lilac__", "comment_text", "pii", "emails", "*"}, spans[0].Path)
}

func TestGetField(t *testing.T) {
	root := mustSchema(t, manifestSchema())

	tests := []struct {
		name     string
		path     schema.Path
		wantPath schema.Path
	}{
		{name: "simple path", path: schema.Path{"title"}, wantPath: schema.Path{"title"}},
		{name: "repeated field", path: schema.Path{"complex_list_of_struct", "*", "propertyA"}, wantPath: schema.Path{"complex_list_of_struct", "*", "propertyA"}},
		{name: "concrete index", path: schema.Path{"complex_list_of_struct", "3", "propertyA"}, wantPath: schema.Path{"complex_list_of_struct", "*", "propertyA"}},
		{name: "annotation path", path: schema.Path{"__lilac__", "comment_text", "pii"}, wantPath: schema.Path{"__lilac__", "comment_text", "pii"}},
		{name: "visible path of a merged field misses", path: schema.Path{"comment_text", "pii"}},
		{name: "absent", path: schema.Path{"nope"}},
		{name: "root is not a child field", path: schema.Path{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := schema.GetField(root, tt.path)
			if tt.wantPath == nil {
				assert.Nil(t, f)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, tt.wantPath, f.Path)
		})
	}
}

func TestListValueNodes(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	row, err := schema.DeserializeRow(manifestRow(), root)
	require.NoError(t, err)

	values := schema.ListValueNodes(row)
	require.NotEmpty(t, values)
	assert.Equal(t, schema.Path{"__rowid__"}, values[0].Path)
	assert.Equal(t, "hNRA5Z_GKkHNiqn0", values[0].Value)

	var paths []schema.Path
	for _, v := range values {
		require.NotNil(t, v)
		paths = append(paths, v.Path)
	}
	assert.Contains(t, paths, schema.Path{"title"})
	assert.Contains(t, paths, schema.Path{"complex_list_of_struct", "*"})
	assert.Contains(t, paths, schema.Path{"complex_list_of_struct", "*", "propertyA"})
	assert.NotContains(t, paths, schema.Path{})
	for _, p := range paths {
		for _, seg := range p {
			assert.NotContains(t, []string{schema.ValueKey, schema.EntityKey}, seg, "bookkeeping keys are never nodes")
		}
	}
}

func TestGetValue(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	row, err := schema.DeserializeRow(manifestRow(), root)
	require.NoError(t, err)

	title := schema.GetValue(row, schema.Path{"title"})
	require.NotNil(t, title)
	assert.Equal(t, "title text", title.Value)

	elem := schema.GetValue(row, schema.Path{"complex_list_of_struct", "*"})
	require.NotNil(t, elem)
	assert.Equal(t, schema.Path{"complex_list_of_struct", "*"}, elem.Path)

	assert.Nil(t, schema.GetValue(row, schema.Path{"missing"}))

	emails := schema.GetValueNodes(row, schema.Path{"__lilac__", "comment_text", "pii", "emails", "*"})
	require.Len(t, emails, 2)
	assert.Equal(t, 82, emails[1].SpanValue().Start)
}

// Every leaf value maps to exactly one field, and span values map to
// string_span fields.
func TestSchemaValueShapeCorrespondence(t *testing.T) {
	root := mustSchema(t, manifestSchema())
	row, err := schema.DeserializeRow(manifestRow(), root)
	require.NoError(t, err)

	fields := schema.ChildFields(root)
	for _, v := range schema.ListValueNodes(row) {
		if len(v.Children) > 0 || v.Kind == schema.KindList || v.Kind == schema.KindStruct {
			continue
		}
		matches := 0
		for _, f := range fields {
			if schema.IsMatching(f.Path, v.Path) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "leaf %s", v.Path)

		f := schema.GetField(root, v.Path)
		require.NotNil(t, f, "leaf %s", v.Path)
		if v.Kind == schema.KindSpan {
			assert.Equal(t, schema.DtypeStringSpan, f.Dtype, "leaf %s", v.Path)
		} else {
			assert.NotEqual(t, schema.DtypeStringSpan, f.Dtype, "leaf %s", v.Path)
		}
	}
}

func TestRowLabels(t *testing.T) {
	root := mustSchema(t, map[string]any{
		"fields": map[string]any{
			"text": map[string]any{"dtype": "string"},
			"good": map[string]any{"label": "good", "fields": map[string]any{"label": map[string]any{"dtype": "string"}}},
		},
	})
	row, err := schema.DeserializeRow(map[string]any{
		"text": "hi",
		"good": map[string]any{"label": "true"},
	}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, schema.RowLabels(row))
}

func TestRawValuesAt(t *testing.T) {
	raw := manifestRow()
	assert.Equal(t, []any{"hNRA5Z_GKkHNiqn0"}, schema.RawValuesAt(raw, schema.Path{schema.RowIDKey}))
	assert.ElementsMatch(t, []any{"valueA", "valueC"}, schema.RawValuesAt(raw, schema.Path{"complex_list_of_struct", "*", "propertyA"}))
	assert.Empty(t, schema.RawValuesAt(raw, schema.Path{"missing"}))
}
