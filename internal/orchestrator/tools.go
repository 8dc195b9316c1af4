package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/llm"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// Tool names offered to the model during plan and fix.
const (
	toolGetNodeCatalog  = "getNodeCatalog"
	toolValidateGraph   = "validateGraph"
	toolSearchApps      = "searchApps"
	toolGetAppFunctions = "getAppFunctions"
)

// maxToolRounds bounds how many tool-call exchanges a single model attempt
// may make before it must produce content.
const maxToolRounds = 8

func toolDefs() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        toolGetNodeCatalog,
			Description: "Returns every available node type with its parameter schema and required scopes, grouped by kind.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		},
		{
			Name:        toolValidateGraph,
			Description: "Validates a workflow graph and returns the diagnostic list. Call this before returning a graph.",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"graph":{"type":"object","description":"the complete workflow graph"}},"required":["graph"]}`),
		},
		{
			Name:        toolSearchApps,
			Description: "Searches available applications by name or capability keyword.",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"query":{"type":"string"}},"required":["query"]}`),
		},
		{
			Name:        toolGetAppFunctions,
			Description: "Lists the triggers and actions one application offers.",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"appName":{"type":"string"}},"required":["appName"]}`),
		},
	}
}

// catalogView is the getNodeCatalog payload shape.
type catalogView struct {
	Triggers   []catalog.Entry `json:"triggers"`
	Transforms []catalog.Entry `json:"transforms"`
	Actions    []catalog.Entry `json:"actions"`
}

// dispatchTool executes one tool call and returns its JSON result. The
// model's own validateGraph calls use the same validator the orchestrator
// re-runs afterwards; the self-report is never the sole gate.
func (o *Orchestrator) dispatchTool(call llm.ToolCall) (string, error) {
	switch call.Name {
	case toolGetNodeCatalog:
		view := catalogView{
			Triggers:   o.catalog.ByKind(graph.KindTrigger),
			Transforms: o.catalog.ByKind(graph.KindTransform),
			Actions:    o.catalog.ByKind(graph.KindAction),
		}
		return marshalToolResult(view)

	case toolValidateGraph:
		var args struct {
			Graph json.RawMessage `json:"graph"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("validateGraph arguments: %w", err)
		}
		g, err := graph.Decode(args.Graph)
		if err != nil {
			return "", err
		}
		diags := validator.Validate(g, o.catalog)
		return marshalToolResult(map[string]any{
			"valid":       !graph.HasErrors(diags),
			"diagnostics": diags,
		})

	case toolSearchApps:
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("searchApps arguments: %w", err)
		}
		return marshalToolResult(o.catalog.SearchApps(args.Query))

	case toolGetAppFunctions:
		var args struct {
			AppName string `json:"appName"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("getAppFunctions arguments: %w", err)
		}
		return marshalToolResult(o.catalog.AppFunctions(args.AppName))

	default:
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
}

func marshalToolResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling tool result: %w", err)
	}
	return string(data), nil
}

// converse drives one model attempt: it sends the messages with the tool
// surface attached and serves tool calls until the model produces content
// or the round bound is hit. Tool execution errors are reported back to the
// model as tool output rather than aborting the attempt.
func (o *Orchestrator) converse(ctx context.Context, messages []llm.Message) (string, error) {
	req := llm.Request{
		Messages:    messages,
		Tools:       toolDefs(),
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}
	for round := 0; round <= maxToolRounds; round++ {
		resp, err := o.gen.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}
		req.Messages = append(req.Messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result, err := o.dispatchTool(call)
			if err != nil {
				result = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			req.Messages = append(req.Messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}
	return "", fmt.Errorf("model did not produce content within %d tool rounds", maxToolRounds)
}
