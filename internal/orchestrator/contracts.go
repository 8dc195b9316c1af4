package orchestrator

import "github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"

// Question is one clarification the model wants answered before planning.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Type     string `json:"type"` // "text", "choice", ...
	Required bool   `json:"required"`
}

// ClarifyResult is one of two branches: the model either has enough detail
// to plan (NeedsMoreInfo false, Summary and Confidence set) or it asks 1-2
// short questions (NeedsMoreInfo true, Questions and Reasoning set).
type ClarifyResult struct {
	NeedsMoreInfo bool       `json:"needsMoreInfo"`
	Questions     []Question `json:"questions,omitempty"`
	Reasoning     string     `json:"reasoning,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Confidence    float64    `json:"confidence,omitempty"`
}

// PlanRequest carries the user intent into planning.
type PlanRequest struct {
	Prompt  string            `json:"prompt"`
	Answers map[string]string `json:"answers,omitempty"` // question id -> answer
}

// PlanResult is a planned graph with its fresh validation findings.
// Diagnostics reflects the state after any automatic fix round; callers
// present error severities as blocking.
type PlanResult struct {
	Graph       *graph.NodeGraph   `json:"graph"`
	Rationale   string             `json:"rationale,omitempty"`
	Diagnostics []graph.Diagnostic `json:"diagnostics,omitempty"`
	Fallback    bool               `json:"fallback,omitempty"` // deterministic fallback graph was used
}

// FixRequest carries an existing graph plus the error diagnostics to clear.
type FixRequest struct {
	Graph  *graph.NodeGraph   `json:"graph"`
	Errors []graph.Diagnostic `json:"errors"`
}

// FixResult is the repaired graph with its fresh validation findings.
// The fallback repair is best-effort: callers must re-validate and may
// re-enter Fix or surface what remains.
type FixResult struct {
	Graph       *graph.NodeGraph   `json:"graph"`
	Diagnostics []graph.Diagnostic `json:"diagnostics,omitempty"`
	Fallback    bool               `json:"fallback,omitempty"`
}
