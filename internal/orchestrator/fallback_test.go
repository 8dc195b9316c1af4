package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

func TestFallbackGraphAlwaysValidates(t *testing.T) {
	g := fallbackGraph("watch my feed and tell me about new items")
	diags := validator.Validate(g, builtinCatalog(t))
	assert.Empty(t, diags)
}

func TestFallbackGraphShape(t *testing.T) {
	g := fallbackGraph("anything")

	require.Len(t, g.Nodes, 2)
	poll := g.Node("poll")
	require.NotNil(t, poll)
	assert.Equal(t, "trigger.time.schedule", poll.Type)
	assert.Equal(t, float64(fallbackIntervalMinutes), poll.Params["everyMinutes"])

	notify := g.Node("notify")
	require.NotNil(t, notify)
	assert.Equal(t, "action.http.request", notify.Type)
	assert.Equal(t, "{{secrets.WEBHOOK_URL}}", notify.Params["url"])

	assert.Equal(t, []graph.Edge{{From: "poll", To: "notify"}}, g.Edges)
	assert.Equal(t, []string{"WEBHOOK_URL"}, g.Secrets)
	assert.NotEmpty(t, g.ID)
}

func TestFallbackGraphRationaleTruncatesPrompt(t *testing.T) {
	long := strings.Repeat("x", 500)
	g := fallbackGraph(long)
	assert.Contains(t, g.Metadata.Rationale, "deterministic fallback")
	assert.Less(t, len(g.Metadata.Rationale), 200)
	assert.Contains(t, g.Metadata.Rationale, "...")
}

func TestFallbackGraphsGetDistinctIDs(t *testing.T) {
	assert.NotEqual(t, fallbackGraph("a").ID, fallbackGraph("b").ID)
}

func TestApplyFallbackRepairSkipsUnrecognizedDiagnostics(t *testing.T) {
	g := fallbackGraph("x")
	repaired := applyFallbackRepair(g, []graph.Diagnostic{
		{Path: "edges", Message: "graph contains a cycle", Severity: graph.SeverityError},
	}, builtinCatalog(t))

	h1, err := g.Hash()
	require.NoError(t, err)
	h2, err := repaired.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "repair must not touch anything it cannot fix")
}

func TestApplyFallbackRepairResolvesNodeByPathIndex(t *testing.T) {
	g := fallbackGraph("x")
	delete(g.Node("notify").Params, "url")

	repaired := applyFallbackRepair(g, []graph.Diagnostic{
		{
			Path:     "nodes[1].params.url",
			Message:  `missing required parameter "url"`,
			Severity: graph.SeverityError,
		},
	}, builtinCatalog(t))

	assert.Equal(t, "TODO_URL", repaired.Node("notify").Params["url"])
	_, touched := g.Node("notify").Params["url"]
	assert.False(t, touched, "input graph must stay untouched")
}

func TestPlaceholderValue(t *testing.T) {
	min := 5.0
	assert.Equal(t, min, placeholderValue("n", catalog.ParamSchema{Type: "number", Minimum: &min}))
	assert.Equal(t, float64(1), placeholderValue("n", catalog.ParamSchema{Type: "number"}))
	assert.Equal(t, false, placeholderValue("b", catalog.ParamSchema{Type: "boolean"}))
	assert.Equal(t, []any{}, placeholderValue("a", catalog.ParamSchema{Type: "array"}))
	assert.Equal(t, map[string]any{}, placeholderValue("o", catalog.ParamSchema{Type: "object"}))
	assert.Equal(t, "GET", placeholderValue("method", catalog.ParamSchema{Type: "string", Enum: []string{"GET", "POST"}}))
	assert.Equal(t, "TODO_CHANNEL", placeholderValue("channel", catalog.ParamSchema{Type: "string"}))
}
