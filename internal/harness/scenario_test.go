package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenarioValid(t *testing.T) {
	path := writeScenario(t, `
name: minimal
description: smallest valid scenario
prompt: "do the thing"
assertions:
  - type: fallback
    fallback: true
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Len(t, s.Assertions, 1)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: assertion vs assertions
prompt: "x"
assertion:
  - type: graph_valid
`)
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nprompt: p\nassertions:\n  - type: graph_valid\n",
			wantErr: "name is required",
		},
		{
			name:    "missing prompt",
			content: "name: n\ndescription: d\nassertions:\n  - type: graph_valid\n",
			wantErr: "prompt is required",
		},
		{
			name:    "no assertions",
			content: "name: n\ndescription: d\nprompt: p\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "empty script step",
			content: "name: n\ndescription: d\nprompt: p\nscript:\n  - {}\nassertions:\n  - type: graph_valid\n",
			wantErr: "script[0]: either reply or fail is required",
		},
		{
			name:    "ambiguous script step",
			content: "name: n\ndescription: d\nprompt: p\nscript:\n  - reply: a\n    fail: b\nassertions:\n  - type: graph_valid\n",
			wantErr: "script[0]: reply and fail are mutually exclusive",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nprompt: p\nassertions:\n  - type: trace_contains\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "has_node without node_type",
			content: "name: n\ndescription: d\nprompt: p\nassertions:\n  - type: has_node\n",
			wantErr: "node_type is required",
		},
		{
			name:    "file_contains without contains",
			content: "name: n\ndescription: d\nprompt: p\nassertions:\n  - type: file_contains\n    file: Code.gs\n",
			wantErr: "contains is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.content))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
