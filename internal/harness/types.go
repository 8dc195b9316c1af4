package harness

import (
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/compiler"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// TraceEvent records one observable step of a scenario run. Events carry
// only deterministic fields so traces can be compared against golden files;
// generated identifiers (graph UUIDs) are deliberately excluded.
type TraceEvent struct {
	Phase    string   `json:"phase"` // "clarify", "plan", "fix", "compile"
	Outcome  string   `json:"outcome"`
	Nodes    []string `json:"nodes,omitempty"` // node ids in id order
	Errors   int      `json:"errors"`
	Warns    int      `json:"warns"`
	Fallback bool     `json:"fallback,omitempty"`
	Seq      int64    `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per pipeline phase, in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Graph       *graph.NodeGraph   `json:"-"`
	Diagnostics []graph.Diagnostic `json:"-"`
	Bundle      *compiler.Bundle   `json:"-"`
	Fallback    bool               `json:"-"`

	seq int64
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a phase event with the next sequence number.
func (r *Result) AddTrace(ev TraceEvent) {
	r.seq++
	ev.Seq = r.seq
	r.Trace = append(r.Trace, ev)
}
