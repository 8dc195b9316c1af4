package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Reference
	}{
		{
			name:  "simple field",
			input: "{{node1.field}}",
			want:  []Reference{{NodeID: "node1", Field: "field", Raw: "{{node1.field}}"}},
		},
		{
			name:  "indexed path",
			input: "{{fetch.items[0].name}}",
			want:  []Reference{{NodeID: "fetch", Field: "items[0].name", Raw: "{{fetch.items[0].name}}"}},
		},
		{
			name:  "bare node reference",
			input: "{{node1}}",
			want:  []Reference{{NodeID: "node1", Field: "", Raw: "{{node1}}"}},
		},
		{
			name:  "surrounding whitespace",
			input: "{{ node1.field }}",
			want:  []Reference{{NodeID: "node1", Field: "field", Raw: "{{ node1.field }}"}},
		},
		{
			name:  "hyphenated node id",
			input: "{{new-email.subject}}",
			want:  []Reference{{NodeID: "new-email", Field: "subject", Raw: "{{new-email.subject}}"}},
		},
		{
			name:  "reserved secrets id",
			input: "{{secrets.API_KEY}}",
			want:  []Reference{{NodeID: "secrets", Field: "API_KEY", Raw: "{{secrets.API_KEY}}"}},
		},
		{
			name:  "multiple in one string",
			input: "From {{a.x}} to {{b.y}}",
			want: []Reference{
				{NodeID: "a", Field: "x", Raw: "{{a.x}}"},
				{NodeID: "b", Field: "y", Raw: "{{b.y}}"},
			},
		},
		{name: "no placeholders", input: "plain text", want: nil},
		{name: "unclosed braces", input: "{{node1.field", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, References(tt.input))
		})
	}
}

func TestParamReferencesWalksNestedValues(t *testing.T) {
	params := map[string]any{
		"url":    "{{secrets.URL}}",
		"body":   map[string]any{"text": "{{trigger.subject}}", "count": float64(3)},
		"values": []any{"{{row.a}}", "{{row.b}}"},
	}

	refs := ParamReferences(params)
	require.Len(t, refs, 4)

	// Deterministic: keys walked in sorted order (body, url, values).
	assert.Equal(t, "trigger", refs[0].NodeID)
	assert.Equal(t, "secrets", refs[1].NodeID)
	assert.Equal(t, "row", refs[2].NodeID)
	assert.Equal(t, "a", refs[2].Field)
	assert.Equal(t, "b", refs[3].Field)
}

func TestParamReferencesEmpty(t *testing.T) {
	assert.Empty(t, ParamReferences(nil))
	assert.Empty(t, ParamReferences(map[string]any{"n": float64(1), "b": true}))
}
