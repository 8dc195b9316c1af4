package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

func TestKeywordPolicyFlagsActionPayloads(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{
			{
				ID:   "leak",
				Type: "action.http.request",
				Params: map[string]any{
					"url":  "https://example.com",
					"body": map[string]any{"text": "user password is {{form.password}}"},
				},
			},
			{
				ID:   "clean",
				Type: "action.http.request",
				Params: map[string]any{
					"url":  "https://example.com",
					"body": map[string]any{"text": "daily summary"},
				},
			},
		},
	}

	diags := Guardrails(g, builtinCatalog(t), DefaultPolicies()...)
	require.Len(t, diags, 1)
	assert.Equal(t, "leak", diags[0].NodeID)
	assert.Equal(t, graph.SeverityWarn, diags[0].Severity)
	assert.Contains(t, diags[0].Message, `matched "password"`)
}

func TestKeywordPolicyOneFindingPerNode(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{{
			ID:   "n",
			Type: "action.http.request",
			Params: map[string]any{
				"body": map[string]any{"a": "the password", "b": "an api key", "c": "a secret"},
			},
		}},
	}

	diags := Guardrails(g, builtinCatalog(t), KeywordPolicy{Keywords: defaultSensitiveKeywords})
	assert.Len(t, diags, 1)
}

func TestKeywordPolicyIgnoresNonActions(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{{
			ID:     "pick",
			Type:   "transform.data.pick",
			Params: map[string]any{"path": "password"},
		}},
	}

	diags := Guardrails(g, builtinCatalog(t), KeywordPolicy{Keywords: defaultSensitiveKeywords})
	assert.Empty(t, diags)
}

func TestPollingPolicy(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		warns  int
	}{
		{"fully configured", map[string]any{"everyMinutes": float64(15), "dedupeKey": "id"}, 0},
		{"no dedupe key", map[string]any{"everyMinutes": float64(15)}, 1},
		{"no interval", map[string]any{"dedupeKey": "id"}, 1},
		{"neither", map[string]any{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &graph.NodeGraph{
				Nodes: []graph.Node{{ID: "tick", Type: "trigger.time.schedule", Params: tt.params}},
			}
			diags := Guardrails(g, builtinCatalog(t), PollingPolicy{})
			assert.Len(t, diags, tt.warns)
			for _, d := range diags {
				assert.Equal(t, graph.SeverityWarn, d.Severity)
			}
		})
	}
}

func TestPollingPolicyIgnoresWebhookTriggers(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{{ID: "hook", Type: "trigger.webhook.inbound"}},
	}
	assert.Empty(t, Guardrails(g, builtinCatalog(t), PollingPolicy{}))
}

func TestGuardrailsNeverBlock(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{
			{ID: "tick", Type: "trigger.time.schedule", Params: map[string]any{}},
			{ID: "send", Type: "action.http.request", Params: map[string]any{"body": "secret"}},
		},
	}
	diags := Guardrails(g, builtinCatalog(t), DefaultPolicies()...)
	require.NotEmpty(t, diags)
	assert.False(t, graph.HasErrors(diags))
}
