package catalog

import "github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"

// Builtin returns the generic node types every catalog carries regardless
// of which application definitions are loaded. The orchestrator's fallback
// graph uses only these, so they must always validate.
func Builtin() []Entry {
	return []Entry{
		{
			ID:          "trigger.time.schedule",
			Kind:        graph.KindTrigger,
			App:         "time",
			Function:    "schedule",
			Description: "Runs the workflow on a fixed polling interval.",
			Params: map[string]ParamSchema{
				"everyMinutes": {Type: "number", Required: true, Minimum: f(1), Maximum: f(1440),
					Description: "Polling interval in minutes."},
				"dedupeKey": {Type: "string",
					Description: "Field used to suppress repeat deliveries of the same item."},
			},
			RequiredScopes: []string{"https://www.googleapis.com/auth/script.scriptapp"},
		},
		{
			ID:          "trigger.webhook.inbound",
			Kind:        graph.KindTrigger,
			App:         "webhook",
			Function:    "inbound",
			Description: "Starts the workflow when an HTTP request is received.",
			Params: map[string]ParamSchema{
				"path": {Type: "string", Description: "Optional path discriminator for shared endpoints."},
			},
		},
		{
			ID:          "action.http.request",
			Kind:        graph.KindAction,
			App:         "http",
			Function:    "request",
			Description: "Sends an outbound HTTP request.",
			Params: map[string]ParamSchema{
				"url":     {Type: "string", Required: true},
				"method":  {Type: "string", Enum: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
				"headers": {Type: "object"},
				"body":    {Type: "object"},
			},
			RequiredScopes: []string{"https://www.googleapis.com/auth/script.external_request"},
		},
		{
			ID:          "transform.data.pick",
			Kind:        graph.KindTransform,
			App:         "data",
			Function:    "pick",
			Description: "Selects a field from an upstream value.",
			Params: map[string]ParamSchema{
				"path": {Type: "string", Required: true},
			},
		},
		{
			ID:          "transform.text.template",
			Kind:        graph.KindTransform,
			App:         "text",
			Function:    "template",
			Description: "Renders a text template over upstream values.",
			Params: map[string]ParamSchema{
				"template": {Type: "string", Required: true},
			},
		},
	}
}

func f(v float64) *float64 { return &v }
