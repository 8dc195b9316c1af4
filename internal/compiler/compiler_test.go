package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

func builtinCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Builtin())
	require.NoError(t, err)
	return c
}

func scheduledGraph() *graph.NodeGraph {
	return &graph.NodeGraph{
		ID: "wf-sched", Name: "Scheduled", Version: 1,
		Nodes: []graph.Node{
			{
				ID: "tick", Type: "trigger.time.schedule",
				Params: map[string]any{"everyMinutes": float64(15), "dedupeKey": "id"},
			},
			{
				ID: "send", Type: "action.http.request",
				Params: map[string]any{"url": "{{secrets.HOOK}}", "method": "POST"},
			},
		},
		Edges: []graph.Edge{{From: "tick", To: "send"}},
		Scopes: []string{
			"https://www.googleapis.com/auth/script.scriptapp",
			"https://www.googleapis.com/auth/script.external_request",
		},
		Secrets: []string{"HOOK"},
	}
}

func webhookGraph() *graph.NodeGraph {
	return &graph.NodeGraph{
		ID: "wf-hook", Name: "Webhook", Version: 1,
		Nodes: []graph.Node{
			{ID: "in", Type: "trigger.webhook.inbound"},
			{
				ID: "out", Type: "action.http.request",
				Params: map[string]any{"url": "https://example.com", "method": "POST"},
			},
		},
		Edges:   []graph.Edge{{From: "in", To: "out"}},
		Scopes:  []string{"https://www.googleapis.com/auth/script.external_request"},
		Secrets: []string{},
	}
}

func fileByName(t *testing.T, b *Bundle, name string) string {
	t.Helper()
	for _, f := range b.Files {
		if f.Name == name {
			return f.Content
		}
	}
	t.Fatalf("bundle has no file %q", name)
	return ""
}

func TestCompileRejectsCycles(t *testing.T) {
	g := scheduledGraph()
	g.Edges = append(g.Edges, graph.Edge{From: "send", To: "tick"})
	_, err := Compile(g, builtinCatalog(t))
	assert.ErrorContains(t, err, "not a DAG")
}

func TestCompileScheduledBundle(t *testing.T) {
	b, err := Compile(scheduledGraph(), builtinCatalog(t))
	require.NoError(t, err)

	assert.Equal(t, "Code.gs", b.Entry)
	assert.Equal(t, 4, b.Stats.FileCount)
	assert.True(t, b.Stats.HasScheduled)
	assert.False(t, b.Stats.HasWebhook)
	assert.Greater(t, b.Stats.TotalLines, 0)

	code := fileByName(t, b, "Code.gs")
	assert.Contains(t, code, "function runScheduled()")
	assert.Contains(t, code, `ScriptApp.newTrigger("runScheduled").timeBased().everyMinutes(15).create();`)
	assert.NotContains(t, code, "function doPost")

	workflow := fileByName(t, b, "Workflow.gs")
	assert.Contains(t, workflow, "function runScheduledFlow_(ctx)")
	assert.Contains(t, workflow, `ctx["tick"] = node_tick_(ctx);`)
	assert.Contains(t, workflow, `ctx["send"] = node_send_(ctx);`)
	assert.Contains(t, workflow, `getSecret_("HOOK")`)
	assert.NotContains(t, workflow, "runWebhookFlow_")
}

func TestCompileWebhookBundle(t *testing.T) {
	b, err := Compile(webhookGraph(), builtinCatalog(t))
	require.NoError(t, err)

	assert.True(t, b.Stats.HasWebhook)
	assert.False(t, b.Stats.HasScheduled)

	code := fileByName(t, b, "Code.gs")
	assert.Contains(t, code, "function doPost(e)")
	assert.Contains(t, code, "parseWebhookEvent_")
	assert.NotContains(t, code, "installTriggers")

	workflow := fileByName(t, b, "Workflow.gs")
	assert.Contains(t, workflow, "function runWebhookFlow_(ctx)")
	assert.Contains(t, workflow, "return ctx.__event || {};")
}

func TestCompileMixedGraphEmitsBothEntryPoints(t *testing.T) {
	g := scheduledGraph()
	g.Nodes = append(g.Nodes,
		graph.Node{ID: "in", Type: "trigger.webhook.inbound"},
		graph.Node{ID: "ack", Type: "action.http.request",
			Params: map[string]any{"url": "https://example.com/ack"}},
	)
	g.Edges = append(g.Edges, graph.Edge{From: "in", To: "ack"})

	b, err := Compile(g, builtinCatalog(t))
	require.NoError(t, err)
	assert.True(t, b.Stats.HasWebhook)
	assert.True(t, b.Stats.HasScheduled)

	code := fileByName(t, b, "Code.gs")
	assert.Contains(t, code, "function doPost(e)")
	assert.Contains(t, code, "function installTriggers()")

	// Each partition runs only its own nodes.
	workflow := fileByName(t, b, "Workflow.gs")
	webhookRunner := between(workflow, "function runWebhookFlow_(ctx)", "return ctx;")
	assert.Contains(t, webhookRunner, `ctx["ack"]`)
	assert.NotContains(t, webhookRunner, `ctx["send"]`)
	scheduledRunner := between(workflow, "function runScheduledFlow_(ctx)", "return ctx;")
	assert.Contains(t, scheduledRunner, `ctx["send"]`)
	assert.NotContains(t, scheduledRunner, `ctx["ack"]`)
}

// between returns the substring of s after the first occurrence of start and
// before the next occurrence of end.
func between(s, start, end string) string {
	_, after, ok := strings.Cut(s, start)
	if !ok {
		return ""
	}
	inner, _, _ := strings.Cut(after, end)
	return inner
}

func TestPolledAppTriggerIsScheduled(t *testing.T) {
	// A non-time trigger with a polling interval runs off the clock.
	cat, err := catalog.New(append(catalog.Builtin(), catalog.Entry{
		ID: "trigger.notes.newNote", Kind: graph.KindTrigger, App: "notes", Function: "newNote",
	}))
	require.NoError(t, err)

	g := &graph.NodeGraph{
		ID: "wf-notes", Name: "Notes", Version: 1,
		Nodes: []graph.Node{
			{ID: "note", Type: "trigger.notes.newNote", Params: map[string]any{"everyMinutes": float64(5)}},
			{ID: "send", Type: "action.http.request", Params: map[string]any{"url": "https://example.com"}},
		},
		Edges:   []graph.Edge{{From: "note", To: "send"}},
		Scopes:  []string{"https://www.googleapis.com/auth/script.external_request"},
		Secrets: []string{},
	}

	b, err := Compile(g, cat)
	require.NoError(t, err)
	assert.True(t, b.Stats.HasScheduled)
	assert.False(t, b.Stats.HasWebhook)

	code := fileByName(t, b, "Code.gs")
	assert.Contains(t, code, "everyMinutes(5)")
}

func TestExecutionOrderBreaksTiesLexicographically(t *testing.T) {
	g := &graph.NodeGraph{
		Nodes: []graph.Node{{ID: "c"}, {ID: "a"}, {ID: "b"}, {ID: "z"}},
		Edges: []graph.Edge{{From: "b", To: "z"}},
	}
	assert.Equal(t, []string{"a", "b", "c", "z"}, executionOrder(g))
}

func TestCompileUnknownTypeFails(t *testing.T) {
	g := scheduledGraph()
	g.Nodes[1].Type = "action.nope.call"
	_, err := Compile(g, builtinCatalog(t))
	assert.ErrorContains(t, err, `type "action.nope.call" not in catalog`)
}

func TestCompileGenericAppNodeCallsGateway(t *testing.T) {
	cat, err := catalog.New(append(catalog.Builtin(), catalog.Entry{
		ID: "action.slack.postMessage", Kind: graph.KindAction, App: "slack", Function: "postMessage",
	}))
	require.NoError(t, err)

	g := webhookGraph()
	g.Nodes[1] = graph.Node{
		ID: "out", Type: "action.slack.postMessage",
		Params: map[string]any{"channel": "#ops", "text": "{{in.message}}"},
	}
	g.Scopes = []string{}

	b, err := Compile(g, cat)
	require.NoError(t, err)
	workflow := fileByName(t, b, "Workflow.gs")
	assert.Contains(t, workflow, `return callApp_("slack", "postMessage", params);`)
	assert.Contains(t, workflow, `ref_(ctx, "in", "message")`)
}
