// SPDX-License-Identifier: Apache-2.0

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lilacml/lilac-view/internal/schema"
)

func TestPath_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path schema.Path
		want string
	}{
		{name: "root", path: schema.Path{}, want: ""},
		{name: "single segment", path: schema.Path{"title"}, want: "title"},
		{name: "nested", path: schema.Path{"complex_field", "propertyA"}, want: "complex_field.propertyA"},
		{name: "wildcard", path: schema.Path{"tags", schema.Wildcard}, want: "tags.*"},
		{name: "reserved names", path: schema.Path{"__lilac__", "comment_text", "pii"}, want: "__lilac__.comment_text.pii"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.Serialize(tt.path)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.path, schema.Deserialize(s))
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestIsMatching(t *testing.T) {
	tests := []struct {
		name string
		a, b schema.Path
		want bool
	}{
		{name: "wildcard matches index", a: schema.Path{"a", "*", "b"}, b: schema.Path{"a", "0", "b"}, want: true},
		{name: "different leaf", a: schema.Path{"a", "b"}, b: schema.Path{"a", "c"}, want: false},
		{name: "different length", a: schema.Path{"a"}, b: schema.Path{"a", "b"}, want: false},
		{name: "both wildcards", a: schema.Path{"a", "*"}, b: schema.Path{"a", "*"}, want: true},
		{name: "roots", a: schema.Path{}, b: schema.Path{}, want: true},
		{name: "nil and empty", a: nil, b: schema.Path{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.IsMatching(tt.a, tt.b))
			assert.Equal(t, tt.want, schema.IsMatching(tt.b, tt.a), "matching must be symmetric")
		})
	}
}

func TestIsEqual(t *testing.T) {
	assert.True(t, schema.IsEqual(schema.Path{"a", "*"}, schema.Path{"a", "*"}))
	assert.False(t, schema.IsEqual(schema.Path{"a", "*"}, schema.Path{"a", "0"}))
}

func TestIncludes(t *testing.T) {
	assert.True(t, schema.Includes(schema.Path{}, schema.Path{"a", "b"}))
	assert.True(t, schema.Includes(schema.Path{"a", "*"}, schema.Path{"a", "3", "b"}))
	assert.True(t, schema.Includes(schema.Path{"a", "b"}, schema.Path{"a", "b"}))
	assert.False(t, schema.Includes(schema.Path{"a", "b"}, schema.Path{"a"}))
	assert.False(t, schema.Includes(schema.Path{"a", "c"}, schema.Path{"a", "b", "c"}))
}

func TestPath_ChildAndParent(t *testing.T) {
	p := schema.Path{"a", "b"}
	child := p.Child("c")
	assert.Equal(t, schema.Path{"a", "b", "c"}, child)
	assert.Equal(t, schema.Path{"a", "b"}, p, "Child must not modify the receiver")
	assert.Equal(t, p, child.Parent())
	assert.Equal(t, schema.Path{}, schema.Path{}.Parent())
}
