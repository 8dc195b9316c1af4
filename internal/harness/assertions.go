package harness

import (
	"fmt"
	"strings"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// EvaluateAssertions checks every assertion against the result and records
// a failure message for each one that does not hold. All assertions are
// evaluated; the first failure does not short-circuit the rest.
func EvaluateAssertions(result *Result, assertions []Assertion) {
	for i, a := range assertions {
		if msg := evaluateAssertion(result, &a); msg != "" {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
}

// evaluateAssertion returns an empty string when the assertion holds, or a
// failure message otherwise.
func evaluateAssertion(result *Result, a *Assertion) string {
	switch a.Type {
	case AssertGraphValid:
		return assertGraphValid(result)
	case AssertNodeCount:
		return assertNodeCount(result, a.Count)
	case AssertHasNode:
		return assertHasNode(result, a.NodeType)
	case AssertFallback:
		return assertFallback(result, a.Fallback)
	case AssertDiagnosticContains:
		return assertDiagnosticContains(result, a.Message)
	case AssertFileContains:
		return assertFileContains(result, a.File, a.Contains)
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
}

func assertGraphValid(result *Result) string {
	if result.Graph == nil {
		return "no graph was planned"
	}
	var blocking []string
	for _, d := range result.Diagnostics {
		if d.Severity == graph.SeverityError {
			blocking = append(blocking, d.Message)
		}
	}
	if len(blocking) > 0 {
		return fmt.Sprintf("graph has %d blocking diagnostics: %s",
			len(blocking), strings.Join(blocking, "; "))
	}
	return ""
}

func assertNodeCount(result *Result, want int) string {
	if result.Graph == nil {
		return "no graph was planned"
	}
	if got := len(result.Graph.Nodes); got != want {
		return fmt.Sprintf("expected %d nodes, got %d", want, got)
	}
	return ""
}

func assertHasNode(result *Result, nodeType string) string {
	if result.Graph == nil {
		return "no graph was planned"
	}
	for _, n := range result.Graph.Nodes {
		if n.Type == nodeType {
			return ""
		}
	}
	return fmt.Sprintf("no node of type %q in graph", nodeType)
}

func assertFallback(result *Result, want bool) string {
	if result.Fallback != want {
		return fmt.Sprintf("expected fallback=%v, got %v", want, result.Fallback)
	}
	return ""
}

func assertDiagnosticContains(result *Result, message string) string {
	for _, d := range result.Diagnostics {
		if strings.Contains(d.Message, message) {
			return ""
		}
	}
	return fmt.Sprintf("no diagnostic message contains %q", message)
}

func assertFileContains(result *Result, name, contains string) string {
	if result.Bundle == nil {
		return "no bundle was compiled"
	}
	for _, f := range result.Bundle.Files {
		if f.Name != name {
			continue
		}
		if !strings.Contains(f.Content, contains) {
			return fmt.Sprintf("file %q does not contain %q", name, contains)
		}
		return ""
	}
	return fmt.Sprintf("bundle has no file %q", name)
}
