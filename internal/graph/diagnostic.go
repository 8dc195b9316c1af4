package graph

import "fmt"

// Severity classifies a diagnostic. Only "error" blocks compilation.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Diagnostic is a structured validation finding. The JSON shape is stable
// across the validator, the orchestrator, and any transport boundary.
type Diagnostic struct {
	Path     string   `json:"path"`
	NodeID   string   `json:"nodeId,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (d Diagnostic) String() string {
	if d.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %s): %s", d.Severity, d.Path, d.NodeID, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
}

// Errors returns only the error-severity diagnostics.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any diagnostic blocks compilation.
// A graph passes validation iff this returns false.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
