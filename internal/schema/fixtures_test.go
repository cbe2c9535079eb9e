// SPDX-License-Identifier: Apache-2.0

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lilacml/lilac-view/internal/schema"
)

// manifestSchema mirrors a select_rows_schema response: source columns plus
// the __lilac__ subtree holding signal output for comment_text and
// complex_field.propertyA.
func manifestSchema() map[string]any {
	return map[string]any{
		"fields": map[string]any{
			"title":        map[string]any{"dtype": "string"},
			"comment_text": map[string]any{"dtype": "string"},
			"complex_field": map[string]any{
				"dtype": "struct",
				"fields": map[string]any{
					"propertyA": map[string]any{"dtype": "string"},
					"propertyB": map[string]any{"dtype": "string"},
				},
			},
			"tags": map[string]any{
				"dtype":          "list",
				"repeated_field": map[string]any{"dtype": "string"},
			},
			"complex_list_of_struct": map[string]any{
				"dtype": "list",
				"repeated_field": map[string]any{
					"dtype": "struct",
					"fields": map[string]any{
						"propertyA": map[string]any{"dtype": "string"},
						"propertyB": map[string]any{"dtype": "string"},
					},
				},
			},
			"__rowid__": map[string]any{"dtype": "string"},
			"__lilac__": map[string]any{
				"dtype": "struct",
				"fields": map[string]any{
					"comment_text": map[string]any{
						"dtype": "struct",
						"fields": map[string]any{
							"pii": map[string]any{
								"dtype":        "struct",
								"signal":       map[string]any{"signal_name": "pii"},
								"derived_from": []any{"comment_text"},
								"fields": map[string]any{
									"emails": map[string]any{
										"dtype":        "list",
										"derived_from": []any{"comment_text"},
										"repeated_field": map[string]any{
											"dtype":        "string_span",
											"fields":       map[string]any{},
											"derived_from": []any{"comment_text"},
										},
									},
								},
							},
						},
					},
					"complex_field": map[string]any{
						"dtype": "struct",
						"fields": map[string]any{
							"propertyA": map[string]any{
								"dtype": "struct",
								"fields": map[string]any{
									"text_statistics": map[string]any{
										"dtype":  "struct",
										"signal": map[string]any{"signal_name": "text_statistics"},
										"fields": map[string]any{
											"num_characters": map[string]any{"dtype": "int32"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func manifestRow() map[string]any {
	return map[string]any{
		"title":        "title text",
		"comment_text": "text content",
		"tags":         []any{"tag1", "tag2"},
		"complex_field": map[string]any{
			"propertyA": "valueA",
			"propertyB": "valueB",
		},
		"complex_list_of_struct": []any{
			map[string]any{"propertyA": "valueA", "propertyB": "valueB"},
			map[string]any{"propertyA": "valueC", "propertyB": "valueD"},
		},
		"__rowid__": "hNRA5Z_GKkHNiqn0",
		"__lilac__": map[string]any{
			"comment_text": map[string]any{
				"pii": map[string]any{
					"emails": []any{
						map[string]any{"__entity__": map[string]any{"start": float64(1), "end": float64(19)}},
						map[string]any{"__entity__": map[string]any{"start": float64(82), "end": float64(100)}},
					},
				},
			},
			"complex_field": map[string]any{
				"propertyA": map[string]any{
					"text_statistics": map[string]any{"num_characters": float64(100)},
				},
			},
		},
	}
}

func mustSchema(t *testing.T, doc map[string]any) *schema.Field {
	t.Helper()
	raw, err := schema.DecodeRawField(doc)
	require.NoError(t, err)
	root, err := schema.DeserializeSchema(raw)
	require.NoError(t, err)
	return root
}
