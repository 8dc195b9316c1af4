package validator

import (
	"fmt"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// Policy is a pluggable safety review. Policies only ever produce
// warn-severity diagnostics and are excluded from pass/fail: stricter or
// domain-specific reviews replace the default without touching the
// validator core.
type Policy interface {
	// Name identifies the policy in logs and CLI output.
	Name() string
	// Review inspects a graph and returns advisory findings.
	Review(g *graph.NodeGraph, cat *catalog.Catalog) []graph.Diagnostic
}

// Guardrails runs every policy in order and concatenates their findings.
func Guardrails(g *graph.NodeGraph, cat *catalog.Catalog, policies ...Policy) []graph.Diagnostic {
	var diags []graph.Diagnostic
	for _, p := range policies {
		diags = append(diags, p.Review(g, cat)...)
	}
	return diags
}

// DefaultPolicies returns the built-in advisory set.
func DefaultPolicies() []Policy {
	return []Policy{
		KeywordPolicy{Keywords: defaultSensitiveKeywords},
		PollingPolicy{},
	}
}

var defaultSensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"api key",
	"api_key",
	"apikey",
	"access token",
	"private key",
	"ssn",
	"social security",
	"credit card",
}

// KeywordPolicy flags potential sensitive-data exposure: action nodes whose
// parameter payload contains a sensitive keyword. Heuristic by nature; it
// may both over- and under-trigger.
type KeywordPolicy struct {
	Keywords []string
}

func (KeywordPolicy) Name() string { return "sensitive-keywords" }

func (p KeywordPolicy) Review(g *graph.NodeGraph, _ *catalog.Catalog) []graph.Diagnostic {
	var diags []graph.Diagnostic
	for i, n := range g.Nodes {
		if n.KindOf() != graph.KindAction {
			continue
		}
		payload := strings.ToLower(flattenParams(n.Params))
		for _, kw := range p.Keywords {
			if strings.Contains(payload, kw) {
				diags = append(diags, graph.Diagnostic{
					Path:     fmt.Sprintf("nodes[%d].params", i),
					NodeID:   n.ID,
					Message:  fmt.Sprintf("outbound payload may expose sensitive data (matched %q)", kw),
					Severity: graph.SeverityWarn,
				})
				break
			}
		}
	}
	return diags
}

// PollingPolicy flags time-based triggers that lack an explicit interval or
// a dedupe key: either omission tends to produce duplicate deliveries or
// runaway polling once deployed.
type PollingPolicy struct{}

func (PollingPolicy) Name() string { return "unbounded-polling" }

func (PollingPolicy) Review(g *graph.NodeGraph, _ *catalog.Catalog) []graph.Diagnostic {
	var diags []graph.Diagnostic
	for i, n := range g.Nodes {
		if n.KindOf() != graph.KindTrigger || !strings.HasPrefix(n.Type, "trigger.time.") {
			continue
		}
		if _, ok := n.Params["everyMinutes"]; !ok {
			diags = append(diags, graph.Diagnostic{
				Path:     fmt.Sprintf("nodes[%d].params.everyMinutes", i),
				NodeID:   n.ID,
				Message:  "polling trigger has no explicit interval",
				Severity: graph.SeverityWarn,
			})
		}
		if _, ok := n.Params["dedupeKey"]; !ok {
			diags = append(diags, graph.Diagnostic{
				Path:     fmt.Sprintf("nodes[%d].params.dedupeKey", i),
				NodeID:   n.ID,
				Message:  "polling trigger has no dedupe key; repeated polls may redeliver the same items",
				Severity: graph.SeverityWarn,
			})
		}
	}
	return diags
}

// flattenParams renders a param map into one searchable string.
func flattenParams(params map[string]any) string {
	var sb strings.Builder
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			sb.WriteString(val)
			sb.WriteByte(' ')
		case []any:
			for _, e := range val {
				walk(e)
			}
		case map[string]any:
			for k, e := range val {
				sb.WriteString(k)
				sb.WriteByte(' ')
				walk(e)
			}
		default:
			fmt.Fprintf(&sb, "%v ", val)
		}
	}
	for k, v := range params {
		sb.WriteString(k)
		sb.WriteByte(' ')
		walk(v)
	}
	return sb.String()
}
