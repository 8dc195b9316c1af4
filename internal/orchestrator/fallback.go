package orchestrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// fallbackIntervalMinutes is the safe polling interval for the deterministic
// fallback graph.
const fallbackIntervalMinutes = 15

// fallbackGraph builds the deterministic minimal graph used when the model
// is unavailable or its output cannot be coerced: one time-based trigger
// feeding one generic outbound request. It uses only builtin node types, so
// it always validates cleanly.
func fallbackGraph(prompt string) *graph.NodeGraph {
	trigger := graph.Node{
		ID:    "poll",
		Type:  "trigger.time.schedule",
		Kind:  graph.KindTrigger,
		Label: "Poll on a fixed interval",
		Params: map[string]any{
			"everyMinutes": float64(fallbackIntervalMinutes),
			"dedupeKey":    "id",
		},
	}
	action := graph.Node{
		ID:    "notify",
		Type:  "action.http.request",
		Kind:  graph.KindAction,
		Label: "Send outbound request",
		Params: map[string]any{
			"url":    "{{secrets.WEBHOOK_URL}}",
			"method": "POST",
			"body":   map[string]any{"text": "{{poll.summary}}"},
		},
	}
	return &graph.NodeGraph{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Name:    "Fallback workflow",
		Version: 1,
		Nodes:   []graph.Node{trigger, action},
		Edges:   []graph.Edge{{From: "poll", To: "notify"}},
		Scopes: []string{
			"https://www.googleapis.com/auth/script.scriptapp",
			"https://www.googleapis.com/auth/script.external_request",
		},
		Secrets: []string{"WEBHOOK_URL"},
		Metadata: graph.Metadata{
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Rationale: fmt.Sprintf("deterministic fallback: model unavailable for %q", truncate(prompt, 120)),
		},
	}
}

var missingParamPattern = regexp.MustCompile(`missing required parameter "([^"]+)"`)

// applyFallbackRepair handles model-less fixing: for each diagnostic whose
// message indicates a missing required parameter, inject a placeholder value
// on the referenced node. Best-effort only; callers re-validate and decide
// whether to re-enter Fix.
func applyFallbackRepair(g *graph.NodeGraph, errs []graph.Diagnostic, cat *catalog.Catalog) *graph.NodeGraph {
	out := g.Clone()
	for _, d := range errs {
		m := missingParamPattern.FindStringSubmatch(d.Message)
		if m == nil {
			continue
		}
		param := m[1]
		node := nodeForDiagnostic(out, d)
		if node == nil {
			continue
		}
		if node.Params == nil {
			node.Params = make(map[string]any)
		}
		var schema catalog.ParamSchema
		if entry, ok := cat.Lookup(node.Type); ok {
			schema = entry.Params[param]
		}
		node.Params[param] = placeholderValue(param, schema)
	}
	return out
}

// nodeForDiagnostic resolves the node a diagnostic refers to, preferring the
// explicit node id and falling back to the nodes[i] index in the path.
func nodeForDiagnostic(g *graph.NodeGraph, d graph.Diagnostic) *graph.Node {
	if d.NodeID != "" {
		if n := g.Node(d.NodeID); n != nil {
			return n
		}
	}
	idx := nodeIndexPattern.FindStringSubmatch(d.Path)
	if idx == nil {
		return nil
	}
	i, err := strconv.Atoi(idx[1])
	if err != nil || i < 0 || i >= len(g.Nodes) {
		return nil
	}
	return &g.Nodes[i]
}

var nodeIndexPattern = regexp.MustCompile(`^nodes\[(\d+)\]`)

func placeholderValue(name string, schema catalog.ParamSchema) any {
	switch schema.Type {
	case "number":
		if schema.Minimum != nil {
			return *schema.Minimum
		}
		return float64(1)
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		if len(schema.Enum) > 0 {
			return schema.Enum[0]
		}
		return "TODO_" + strings.ToUpper(name)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
