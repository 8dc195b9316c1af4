package graph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a node by its role in the workflow.
// Decoded once at ingestion from the type string prefix; downstream code
// switches on Kind instead of re-parsing the type string.
type Kind string

const (
	KindTrigger   Kind = "trigger"
	KindTransform Kind = "transform"
	KindAction    Kind = "action"
)

// ParseKind maps a node type string of the form "<kind>.<app>.<function>"
// to its Kind. Unknown prefixes are an error, never silently mapped.
func ParseKind(nodeType string) (Kind, error) {
	prefix, _, ok := strings.Cut(nodeType, ".")
	if !ok {
		return "", fmt.Errorf("node type %q: expected \"<kind>.<app>.<function>\"", nodeType)
	}
	switch Kind(prefix) {
	case KindTrigger, KindTransform, KindAction:
		return Kind(prefix), nil
	default:
		return "", fmt.Errorf("node type %q: unknown kind %q", nodeType, prefix)
	}
}

// Node is a typed unit of work in the graph.
type Node struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Kind    Kind              `json:"-"` // derived from Type by Decode
	Label   string            `json:"label,omitempty"`
	Params  map[string]any    `json:"params,omitempty"`
	Inputs  map[string]string `json:"inputs,omitempty"`
	Outputs map[string]string `json:"outputs,omitempty"`
}

// Edge is a directed execution/data dependency between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Metadata carries informational annotations. No invariant depends on it.
type Metadata struct {
	CreatedAt  string  `json:"createdAt,omitempty"`
	Complexity string  `json:"complexity,omitempty"`
	ValueScore float64 `json:"valueScore,omitempty"`
	Rationale  string  `json:"rationale,omitempty"`
}

// NodeGraph is the DAG representing a planned automation.
// Node and edge ordering is significant and preserved through
// serialization round trips.
type NodeGraph struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Version  int      `json:"version"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Scopes   []string `json:"scopes"`
	Secrets  []string `json:"secrets"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Decode parses raw JSON into a NodeGraph and derives each node's Kind.
// A type string with an unknown or missing kind prefix leaves Kind empty
// rather than failing: structural problems are the validator's to report,
// and dropping nodes here would hide them from it.
func Decode(data []byte) (*NodeGraph, error) {
	var g NodeGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding graph: %w", err)
	}
	for i := range g.Nodes {
		if k, err := ParseKind(g.Nodes[i].Type); err == nil {
			g.Nodes[i].Kind = k
		}
	}
	return &g, nil
}

// Encode serializes the graph, preserving node and edge order.
func (g *NodeGraph) Encode() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// KindOf returns the node's kind, deriving it from the type string when the
// node was constructed directly rather than decoded.
func (n *Node) KindOf() Kind {
	if n.Kind != "" {
		return n.Kind
	}
	k, _ := ParseKind(n.Type)
	return k
}

// Node returns the node with the given id, or nil.
func (g *NodeGraph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Fix fallbacks mutate the copy, never the input.
func (g *NodeGraph) Clone() *NodeGraph {
	out := *g
	out.Nodes = make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		cp := n
		if n.Params != nil {
			cp.Params = make(map[string]any, len(n.Params))
			for k, v := range n.Params {
				cp.Params[k] = cloneValue(v)
			}
		}
		if n.Inputs != nil {
			cp.Inputs = make(map[string]string, len(n.Inputs))
			for k, v := range n.Inputs {
				cp.Inputs[k] = v
			}
		}
		if n.Outputs != nil {
			cp.Outputs = make(map[string]string, len(n.Outputs))
			for k, v := range n.Outputs {
				cp.Outputs[k] = v
			}
		}
		out.Nodes[i] = cp
	}
	out.Edges = append([]Edge(nil), g.Edges...)
	out.Scopes = append([]string(nil), g.Scopes...)
	out.Secrets = append([]string(nil), g.Secrets...)
	return &out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, e := range val {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return val
	}
}
