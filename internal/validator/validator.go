// Package validator checks a workflow graph against its catalog and reports
// every problem as a diagnostic. Validation is a pure function: identical
// inputs yield an identical, order-stable diagnostic list, so a graph can be
// re-validated after a fix and compared finding-for-finding.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// Validate runs the structural passes in order: shape, id uniqueness,
// acyclicity, type existence, parameter schemas, scope coverage, edge
// referential integrity.
//
// The advisory guardrail pass is separate (see Guardrails); it never
// contributes to pass/fail.
func Validate(g *graph.NodeGraph, cat *catalog.Catalog) []graph.Diagnostic {
	var diags []graph.Diagnostic
	diags = append(diags, checkShape(g)...)
	dups := checkIDUniqueness(g)
	diags = append(diags, dups...)
	if len(dups) == 0 {
		// Kahn keys nodes by id, so duplicated ids corrupt its in-degree
		// accounting and an acyclic graph can look cyclic. The duplicate-id
		// diagnostics already block the graph; re-run after they are fixed.
		diags = append(diags, checkAcyclicity(g)...)
	}
	diags = append(diags, checkTypes(g, cat)...)
	diags = append(diags, checkParams(g, cat)...)
	diags = append(diags, checkScopes(g, cat)...)
	diags = append(diags, checkEdges(g)...)
	return diags
}

func errAt(path, nodeID, format string, args ...any) graph.Diagnostic {
	return graph.Diagnostic{
		Path:     path,
		NodeID:   nodeID,
		Message:  fmt.Sprintf(format, args...),
		Severity: graph.SeverityError,
	}
}

func warnAt(path, nodeID, format string, args ...any) graph.Diagnostic {
	return graph.Diagnostic{
		Path:     path,
		NodeID:   nodeID,
		Message:  fmt.Sprintf(format, args...),
		Severity: graph.SeverityWarn,
	}
}

// checkShape verifies required top-level fields. Each failure is its own
// diagnostic at the corresponding path.
func checkShape(g *graph.NodeGraph) []graph.Diagnostic {
	var diags []graph.Diagnostic
	if strings.TrimSpace(g.ID) == "" {
		diags = append(diags, errAt("id", "", "graph id is required and must be non-empty"))
	}
	if strings.TrimSpace(g.Name) == "" {
		diags = append(diags, errAt("name", "", "graph name is required and must be non-empty"))
	}
	if g.Version < 1 {
		diags = append(diags, errAt("version", "", "version must be an integer >= 1, got %d", g.Version))
	}
	if g.Nodes == nil {
		diags = append(diags, errAt("nodes", "", "nodes is required and must be a sequence"))
	}
	if g.Edges == nil {
		diags = append(diags, errAt("edges", "", "edges is required and must be a sequence"))
	}
	if g.Scopes == nil {
		diags = append(diags, errAt("scopes", "", "scopes is required and must be a sequence"))
	}
	if g.Secrets == nil {
		diags = append(diags, errAt("secrets", "", "secrets is required and must be a sequence"))
	}
	return diags
}

// checkIDUniqueness reports one diagnostic per duplicated id, not per
// occurrence.
func checkIDUniqueness(g *graph.NodeGraph) []graph.Diagnostic {
	seen := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		seen[n.ID]++
	}
	var diags []graph.Diagnostic
	reported := make(map[string]bool)
	for i, n := range g.Nodes {
		if seen[n.ID] > 1 && !reported[n.ID] {
			reported[n.ID] = true
			diags = append(diags, errAt(fmt.Sprintf("nodes[%d].id", i), n.ID,
				"duplicate node id %q (%d occurrences)", n.ID, seen[n.ID]))
		}
	}
	return diags
}

// checkAcyclicity emits a single diagnostic if the topological order covers
// fewer nodes than the graph holds, meaning a cycle exists among the edges.
func checkAcyclicity(g *graph.NodeGraph) []graph.Diagnostic {
	order := graph.TopologicalOrder(g)
	if len(order) >= len(g.Nodes) {
		return nil
	}
	ordered := make(map[string]bool, len(order))
	for _, id := range order {
		ordered[id] = true
	}
	var stuck []string
	for _, n := range g.Nodes {
		if !ordered[n.ID] {
			stuck = append(stuck, n.ID)
		}
	}
	return []graph.Diagnostic{errAt("edges", "",
		"graph contains a cycle: nodes %s never reach in-degree zero", strings.Join(stuck, ", "))}
}

func checkTypes(g *graph.NodeGraph, cat *catalog.Catalog) []graph.Diagnostic {
	var diags []graph.Diagnostic
	for i, n := range g.Nodes {
		path := fmt.Sprintf("nodes[%d].type", i)
		if strings.TrimSpace(n.Type) == "" {
			diags = append(diags, errAt(path, n.ID, "node type is required"))
			continue
		}
		if _, ok := cat.Lookup(n.Type); !ok {
			diags = append(diags, errAt(path, n.ID, "unknown node type %q", n.Type))
		}
	}
	return diags
}

func checkParams(g *graph.NodeGraph, cat *catalog.Catalog) []graph.Diagnostic {
	var diags []graph.Diagnostic
	for i, n := range g.Nodes {
		entry, ok := cat.Lookup(n.Type)
		if !ok {
			continue // reported by the type pass
		}
		names := make([]string, 0, len(entry.Params))
		for name := range entry.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			schema := entry.Params[name]
			path := fmt.Sprintf("nodes[%d].params.%s", i, name)
			value, present := n.Params[name]
			if !present {
				if schema.Required {
					diags = append(diags, errAt(path, n.ID, "missing required parameter %q", name))
				}
				continue
			}
			diags = append(diags, checkParamValue(path, n.ID, name, value, schema)...)
		}
	}
	return diags
}

func checkParamValue(path, nodeID, name string, value any, schema catalog.ParamSchema) []graph.Diagnostic {
	var diags []graph.Diagnostic
	typeOK := schema.Type == "" || kindMatches(schema.Type, value)
	if !typeOK {
		diags = append(diags, errAt(path, nodeID,
			"parameter %q must be of type %s, got %s", name, schema.Type, jsonKind(value)))
	}
	if len(schema.Enum) > 0 {
		if s, ok := value.(string); ok {
			if !contains(schema.Enum, s) {
				diags = append(diags, errAt(path, nodeID,
					"parameter %q must be one of [%s], got %q", name, strings.Join(schema.Enum, ", "), s))
			}
		} else if typeOK {
			// A non-string can never satisfy a string enum; the type pass
			// covers the case where a type was declared and missed.
			diags = append(diags, errAt(path, nodeID,
				"parameter %q must be one of [%s], got %s", name, strings.Join(schema.Enum, ", "), jsonKind(value)))
		}
	}
	if num, ok := asNumber(value); ok {
		if schema.Minimum != nil && num < *schema.Minimum {
			diags = append(diags, errAt(path, nodeID,
				"parameter %q must be >= %v, got %v", name, *schema.Minimum, num))
		}
		if schema.Maximum != nil && num > *schema.Maximum {
			diags = append(diags, errAt(path, nodeID,
				"parameter %q must be <= %v, got %v", name, *schema.Maximum, num))
		}
	}
	return diags
}

// checkScopes is two-directional: a required scope absent from the graph is
// an error, a declared scope no node type requires is a warning.
func checkScopes(g *graph.NodeGraph, cat *catalog.Catalog) []graph.Diagnostic {
	required := make(map[string]bool)
	for _, n := range g.Nodes {
		entry, ok := cat.Lookup(n.Type)
		if !ok {
			continue
		}
		for _, s := range entry.RequiredScopes {
			required[s] = true
		}
	}
	declared := make(map[string]bool, len(g.Scopes))
	for _, s := range g.Scopes {
		declared[s] = true
	}

	var diags []graph.Diagnostic
	missing := make([]string, 0)
	for s := range required {
		if !declared[s] {
			missing = append(missing, s)
		}
	}
	sort.Strings(missing)
	for _, s := range missing {
		diags = append(diags, errAt("scopes", "", "missing required scope %q", s))
	}
	for i, s := range g.Scopes {
		if !required[s] {
			diags = append(diags, warnAt(fmt.Sprintf("scopes[%d]", i), "",
				"unnecessary scope %q: no node type in this graph requires it", s))
		}
	}
	return diags
}

func checkEdges(g *graph.NodeGraph) []graph.Diagnostic {
	exists := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		exists[n.ID] = true
	}
	var diags []graph.Diagnostic
	for i, e := range g.Edges {
		if e.From == "" {
			diags = append(diags, errAt(fmt.Sprintf("edges[%d].from", i), "", "edge is missing \"from\""))
		} else if !exists[e.From] {
			diags = append(diags, errAt(fmt.Sprintf("edges[%d].from", i), "",
				"edge references unknown node %q", e.From))
		}
		if e.To == "" {
			diags = append(diags, errAt(fmt.Sprintf("edges[%d].to", i), "", "edge is missing \"to\""))
		} else if !exists[e.To] {
			diags = append(diags, errAt(fmt.Sprintf("edges[%d].to", i), "",
				"edge references unknown node %q", e.To))
		}
	}
	return diags
}

func kindMatches(expected string, value any) bool {
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := asNumber(value)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
