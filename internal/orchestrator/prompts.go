package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

const clarifySystemPrompt = `You decide whether a user's automation request has enough detail to plan a workflow.
Reply with exactly one JSON object, no prose.

If the request is specific enough:
  {"needsMoreInfo": false, "summary": "<one-sentence intent summary>", "confidence": <0..1>}

If it is not, ask at most two short questions:
  {"needsMoreInfo": true,
   "questions": [{"id": "q1", "text": "...", "type": "text", "required": true}],
   "reasoning": "<why these questions are needed>"}`

const planSystemPrompt = `You build automation workflows as directed acyclic graphs of typed nodes.

Constraints, all of them hard:
- Use only node types from the catalog (call getNodeCatalog). If nothing fits,
  pick the closest match and add a short note in the node's label.
- Prefer event-style triggers. When none exists for the source, fall back to
  trigger.time.schedule with a safe explicit everyMinutes interval.
- transform.* nodes must be side-effect free; anything that writes or sends
  belongs in an action.* node.
- Reference upstream outputs with the placeholder syntax {{nodeId.field}}
  (indexed form {{nodeId.items[0].name}}). Never invent ad hoc variable names.
- Set graph.scopes to exactly the union of the required scopes of the node
  types you used.

Call validateGraph on your graph before answering. Reply with exactly one
JSON object: {"graph": {...}, "rationale": "<one short paragraph>"}.`

const fixSystemPrompt = `You repair automation workflow graphs. You are given a graph and a list of
error diagnostics. Change only what is necessary to resolve exactly those
diagnostics; preserve the graph's intent, node ids, and every {{...}}
placeholder verbatim. Call validateGraph to confirm, then reply with exactly
one JSON object: {"graph": {...}}.`

// planUserPrompt assembles the user turn for planning: the prompt, any
// clarification answers, and a capability digest so the model can plan
// without a tool round trip for common cases.
func planUserPrompt(req PlanRequest, capabilities []string) string {
	var sb strings.Builder
	sb.WriteString("Build a workflow for this request:\n\n")
	sb.WriteString(req.Prompt)
	if len(req.Answers) > 0 {
		sb.WriteString("\n\nClarification answers:\n")
		ids := make([]string, 0, len(req.Answers))
		for id := range req.Answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&sb, "- %s: %s\n", id, req.Answers[id])
		}
	}
	sb.WriteString("\n\nAvailable node types:\n")
	for _, c := range capabilities {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func fixUserPrompt(g *graph.NodeGraph, errs []graph.Diagnostic) (string, error) {
	graphJSON, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling graph: %w", err)
	}
	errJSON, err := json.MarshalIndent(errs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling diagnostics: %w", err)
	}
	return fmt.Sprintf("Graph:\n%s\n\nError diagnostics to resolve:\n%s", graphJSON, errJSON), nil
}
