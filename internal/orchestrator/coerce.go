package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// coerceJSON unmarshals model output into v, tolerating prose around the
// JSON: a direct parse is tried first, then the outermost {...} substring.
func coerceJSON(content string, v any) error {
	content = strings.TrimSpace(content)
	// Models often wrap JSON in a markdown fence.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in model output")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), v); err != nil {
		return fmt.Errorf("parsing model output: %w", err)
	}
	return nil
}

// planEnvelope is the expected plan/fix reply shape. Models sometimes return
// the graph bare instead of wrapped, so coerceGraph accepts both.
type planEnvelope struct {
	Graph     json.RawMessage `json:"graph"`
	Rationale string          `json:"rationale"`
}

// coerceGraph extracts a NodeGraph (and optional rationale) from model output.
func coerceGraph(content string) (*graph.NodeGraph, string, error) {
	var env planEnvelope
	if err := coerceJSON(content, &env); err != nil {
		return nil, "", err
	}
	raw := env.Graph
	if len(raw) == 0 {
		// Bare graph: re-extract the whole object.
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, "", fmt.Errorf("no graph object in model output")
		}
		raw = json.RawMessage(content[start : end+1])
	}
	g, err := graph.Decode(raw)
	if err != nil {
		return nil, "", err
	}
	if len(g.Nodes) == 0 {
		return nil, "", fmt.Errorf("model output contains no nodes")
	}
	return g, env.Rationale, nil
}
