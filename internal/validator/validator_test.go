package validator

import (
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

// validGraph returns a graph that passes every structural pass against the
// builtin catalog. Tests mutate one aspect at a time.
func validGraph() *graph.NodeGraph {
	return &graph.NodeGraph{
		ID:      "wf-1",
		Name:    "Valid workflow",
		Version: 1,
		Nodes: []graph.Node{
			{
				ID:   "tick",
				Type: "trigger.time.schedule",
				Params: map[string]any{
					"everyMinutes": float64(15),
					"dedupeKey":    "id",
				},
			},
			{
				ID:   "send",
				Type: "action.http.request",
				Params: map[string]any{
					"url":    "https://example.com/hook",
					"method": "POST",
				},
			},
		},
		Edges: []graph.Edge{{From: "tick", To: "send"}},
		Scopes: []string{
			"https://www.googleapis.com/auth/script.scriptapp",
			"https://www.googleapis.com/auth/script.external_request",
		},
		Secrets: []string{},
	}
}

func TestValidateCleanGraph(t *testing.T) {
	diags := Validate(validGraph(), builtinCatalog(t))
	assert.Empty(t, diags)
}

func TestValidateIsDeterministic(t *testing.T) {
	g := validGraph()
	g.Nodes[1].Params = map[string]any{} // several param errors at once
	g.Scopes = nil

	cat := builtinCatalog(t)
	first := Validate(g, cat)
	second := Validate(g, cat)
	assert.Equal(t, first, second)
	require.NotEmpty(t, first)
}

func TestShapeFailures(t *testing.T) {
	g := &graph.NodeGraph{}
	diags := Validate(g, builtinCatalog(t))

	paths := make(map[string]bool)
	for _, d := range diags {
		require.Equal(t, graph.SeverityError, d.Severity)
		paths[d.Path] = true
	}
	for _, want := range []string{"id", "name", "version", "nodes", "edges", "scopes", "secrets"} {
		assert.True(t, paths[want], "expected a diagnostic at %q", want)
	}
}

func TestDuplicateIDReportedOnce(t *testing.T) {
	g := validGraph()
	g.Nodes = append(g.Nodes, g.Nodes[1], g.Nodes[1]) // three "send" nodes

	diags := Validate(g, builtinCatalog(t))
	var dups []graph.Diagnostic
	for _, d := range diags {
		if d.NodeID == "send" && d.Path == "nodes[1].id" {
			dups = append(dups, d)
		}
	}
	require.Len(t, dups, 1)
	assert.Contains(t, dups[0].Message, `duplicate node id "send" (3 occurrences)`)
}

func TestDuplicateIDsDoNotFakeACycle(t *testing.T) {
	// Kahn keys by id, so an acyclic graph with a repeated id would come up
	// short of len(nodes) and look cyclic. The duplicate-id finding must be
	// the only blocking diagnostic.
	g := validGraph()
	g.Nodes = append(g.Nodes, g.Nodes[1], g.Nodes[1])

	diags := Validate(g, builtinCatalog(t))
	errs := graph.Errors(diags)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "duplicate node id")
	for _, d := range diags {
		assert.NotContains(t, d.Message, "cycle")
	}
}

func TestCycleDetection(t *testing.T) {
	g := validGraph()
	g.Nodes = append(g.Nodes, graph.Node{
		ID: "mid", Type: "transform.data.pick", Params: map[string]any{"path": "x"},
	})
	g.Edges = []graph.Edge{
		{From: "tick", To: "send"},
		{From: "send", To: "mid"},
		{From: "mid", To: "send"},
	}

	diags := Validate(g, builtinCatalog(t))
	errs := graph.Errors(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, "edges", errs[0].Path)
	assert.Contains(t, errs[0].Message, "cycle")
	assert.Contains(t, errs[0].Message, "send")
	assert.Contains(t, errs[0].Message, "mid")
}

func TestUnknownNodeType(t *testing.T) {
	g := validGraph()
	g.Nodes[1].Type = "action.nope.call"

	diags := Validate(g, builtinCatalog(t))
	found := false
	for _, d := range diags {
		if d.Path == "nodes[1].type" {
			found = true
			assert.Contains(t, d.Message, `unknown node type "action.nope.call"`)
		}
	}
	assert.True(t, found)
}

func TestMissingRequiredParameter(t *testing.T) {
	g := validGraph()
	delete(g.Nodes[1].Params, "url")

	errs := graph.Errors(Validate(g, builtinCatalog(t)))
	require.Len(t, errs, 1)
	assert.Equal(t, "nodes[1].params.url", errs[0].Path)
	assert.Equal(t, "send", errs[0].NodeID)
	assert.Contains(t, errs[0].Message, `missing required parameter "url"`)

	// Restoring the parameter clears the diagnostic.
	g.Nodes[1].Params["url"] = "https://example.com"
	assert.Empty(t, Validate(g, builtinCatalog(t)))
}

func TestParamTypeEnumAndRange(t *testing.T) {
	cat := builtinCatalog(t)

	t.Run("wrong type", func(t *testing.T) {
		g := validGraph()
		g.Nodes[0].Params["everyMinutes"] = "soon"
		errs := graph.Errors(Validate(g, cat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `parameter "everyMinutes" must be of type number, got string`)
	})

	t.Run("enum violation", func(t *testing.T) {
		g := validGraph()
		g.Nodes[1].Params["method"] = "FETCH"
		errs := graph.Errors(Validate(g, cat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `must be one of [GET, POST, PUT, PATCH, DELETE], got "FETCH"`)
	})

	t.Run("enum violation with non-string value", func(t *testing.T) {
		enumCat, err := catalog.New(append(catalog.Builtin(), catalog.Entry{
			ID:       "action.mail.send",
			Kind:     graph.KindAction,
			App:      "mail",
			Function: "send",
			Params: map[string]catalog.ParamSchema{
				"priority": {Enum: []string{"low", "high"}},
			},
		}))
		require.NoError(t, err)

		g := validGraph()
		g.Nodes = append(g.Nodes, graph.Node{
			ID:     "mail",
			Type:   "action.mail.send",
			Params: map[string]any{"priority": 2},
		})
		g.Edges = append(g.Edges, graph.Edge{From: "send", To: "mail"})

		errs := graph.Errors(Validate(g, enumCat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `parameter "priority" must be one of [low, high], got number`)
	})

	t.Run("wrong type against an enum reports the type only", func(t *testing.T) {
		g := validGraph()
		g.Nodes[1].Params["method"] = 7
		errs := graph.Errors(Validate(g, cat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `parameter "method" must be of type string, got number`)
	})

	t.Run("below minimum", func(t *testing.T) {
		g := validGraph()
		g.Nodes[0].Params["everyMinutes"] = float64(0)
		errs := graph.Errors(Validate(g, cat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `"everyMinutes" must be >= 1`)
	})

	t.Run("above maximum", func(t *testing.T) {
		g := validGraph()
		g.Nodes[0].Params["everyMinutes"] = float64(100000)
		errs := graph.Errors(Validate(g, cat))
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, `"everyMinutes" must be <= 1440`)
	})
}

func TestScopeCoverageIsTwoDirectional(t *testing.T) {
	cat := builtinCatalog(t)

	t.Run("missing required scope is an error", func(t *testing.T) {
		g := validGraph()
		g.Scopes = []string{"https://www.googleapis.com/auth/script.scriptapp"}
		diags := Validate(g, cat)
		errs := graph.Errors(diags)
		require.Len(t, errs, 1)
		assert.Equal(t, "scopes", errs[0].Path)
		assert.Contains(t, errs[0].Message,
			`missing required scope "https://www.googleapis.com/auth/script.external_request"`)
	})

	t.Run("unnecessary scope is a warning", func(t *testing.T) {
		g := validGraph()
		g.Scopes = append(g.Scopes, "https://www.googleapis.com/auth/drive")
		diags := Validate(g, cat)
		assert.False(t, graph.HasErrors(diags))
		require.Len(t, diags, 1)
		assert.Equal(t, graph.SeverityWarn, diags[0].Severity)
		assert.Equal(t, "scopes[2]", diags[0].Path)
		assert.Contains(t, diags[0].Message, "unnecessary scope")
	})
}

func TestEdgeIntegrity(t *testing.T) {
	g := validGraph()
	g.Edges = append(g.Edges,
		graph.Edge{From: "ghost", To: "send"},
		graph.Edge{From: "tick", To: ""},
	)

	errs := graph.Errors(Validate(g, builtinCatalog(t)))
	require.Len(t, errs, 2)
	assert.Equal(t, "edges[1].from", errs[0].Path)
	assert.Contains(t, errs[0].Message, `references unknown node "ghost"`)
	assert.Equal(t, "edges[2].to", errs[1].Path)
	assert.Contains(t, errs[1].Message, `missing "to"`)
}

func TestValidateCollectsAllFindings(t *testing.T) {
	// One graph with a shape problem, an unknown type, a missing param, and
	// a scope gap: validation must report all of them, not stop at the first.
	g := validGraph()
	g.Name = ""
	g.Nodes[0].Type = "trigger.nope.never"
	delete(g.Nodes[1].Params, "url")
	g.Scopes = []string{}

	diags := Validate(g, builtinCatalog(t))
	paths := make(map[string]int)
	for _, d := range diags {
		paths[d.Path]++
	}
	assert.GreaterOrEqual(t, paths["name"], 1)
	assert.GreaterOrEqual(t, paths["nodes[0].type"], 1)
	assert.GreaterOrEqual(t, paths["nodes[1].params.url"], 1)
	assert.GreaterOrEqual(t, paths["scopes"], 1)
}
