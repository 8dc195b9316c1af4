// Package orchestrator mediates between a user's free-text intent and a
// validated workflow graph via a three-phase protocol: Clarify asks whether
// the prompt is plannable, Plan has the model construct a graph against the
// catalog, and Fix has it resolve specific error diagnostics. The model is a
// tool-using collaborator; its self-reported validation is never trusted,
// and the orchestrator re-validates after every phase.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/llm"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/validator"
)

// maxAttempts bounds model calls per phase: one initial attempt plus one
// retry on unusable output, then the deterministic fallback (plan/fix) or a
// hard failure (clarify). No backoff at this layer; that belongs to the
// transport client.
const maxAttempts = 2

// Orchestrator runs the clarify/plan/fix protocol for one catalog snapshot.
// Safe for concurrent use: it holds no per-request state.
type Orchestrator struct {
	gen         llm.Generator
	catalog     *catalog.Catalog
	log         *zap.SugaredLogger
	temperature float32
	maxTokens   int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTemperature sets the sampling temperature for model calls.
func WithTemperature(t float32) Option {
	return func(o *Orchestrator) { o.temperature = t }
}

// WithMaxTokens caps model output length.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// New builds an orchestrator. The catalog is shared read-only across
// concurrent requests; log must be non-nil (use zap.NewNop for silence).
func New(gen llm.Generator, cat *catalog.Catalog, log *zap.SugaredLogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:         gen,
		catalog:     cat,
		log:         log,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Clarify asks the model whether prompt carries enough detail to plan.
// There is no fallback here: a clarification failure does not imply a
// planning failure, so it surfaces as CLARIFICATION_FAILED instead of
// producing a silent fallback graph.
func (o *Orchestrator) Clarify(ctx context.Context, prompt string) (*ClarifyResult, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: clarifySystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := o.gen.Generate(ctx, llm.Request{
			Messages:    messages,
			Temperature: o.temperature,
			MaxTokens:   o.maxTokens,
		})
		if err != nil {
			lastErr = err
			o.log.Warnw("clarify call failed", "attempt", attempt, "error", err)
			continue
		}
		result, err := parseClarify(resp.Content)
		if err != nil {
			lastErr = err
			o.log.Warnw("clarify response unusable", "attempt", attempt, "error", err)
			continue
		}
		return result, nil
	}
	return nil, &ProtocolError{
		Code:    CodeClarificationFailed,
		Message: "could not interpret the model's clarification response",
		Err:     lastErr,
	}
}

// parseClarify interprets model output as one of the two clarify branches.
func parseClarify(content string) (*ClarifyResult, error) {
	var result ClarifyResult
	if err := coerceJSON(content, &result); err != nil {
		return nil, err
	}
	if result.NeedsMoreInfo {
		if len(result.Questions) == 0 {
			return nil, fmt.Errorf("needsMoreInfo is true but no questions were given")
		}
		if len(result.Questions) > 2 {
			result.Questions = result.Questions[:2]
		}
		return &result, nil
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("response matches neither clarify branch")
	}
	return &result, nil
}

// Plan constructs a complete graph for the request, validates it, and runs
// one automatic Fix round if error diagnostics remain. If the model is
// unusable after the retry bound it falls back to the deterministic minimal
// graph, which always validates cleanly against the builtin types.
func (o *Orchestrator) Plan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: planSystemPrompt},
		{Role: llm.RoleUser, Content: planUserPrompt(req, o.capabilities())},
	}

	var (
		g         *graph.NodeGraph
		rationale string
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := o.converse(ctx, messages)
		if err != nil {
			o.log.Warnw("plan call failed", "attempt", attempt, "error", err)
			continue
		}
		g, rationale, err = coerceGraph(content)
		if err != nil {
			o.log.Warnw("plan response unusable", "attempt", attempt, "error", err)
			g = nil
			continue
		}
		break
	}

	result := &PlanResult{Rationale: rationale}
	if g == nil {
		g = fallbackGraph(req.Prompt)
		result.Fallback = true
		result.Rationale = g.Metadata.Rationale
		o.log.Infow("plan fell back to deterministic graph", "graph", g.ID)
	}

	diags := validator.Validate(g, o.catalog)
	if errs := graph.Errors(diags); len(errs) > 0 {
		// Fix is entered automatically, no extra round trip to the caller.
		fixed, err := o.Fix(ctx, FixRequest{Graph: g, Errors: errs})
		if err != nil {
			return nil, err
		}
		g = fixed.Graph
		diags = fixed.Diagnostics
	}

	result.Graph = g
	result.Diagnostics = diags
	return result, nil
}

// Fix asks the model to resolve exactly the given error diagnostics,
// preserving the graph's intent, then re-validates. With an empty error
// list the input graph is returned unchanged. If the model is unusable the
// deterministic repair injects placeholder values for missing required
// parameters; that repair is best-effort, so callers re-validate.
func (o *Orchestrator) Fix(ctx context.Context, req FixRequest) (*FixResult, error) {
	if req.Graph == nil {
		return nil, fmt.Errorf("fix: graph is required")
	}
	if len(req.Errors) == 0 {
		return &FixResult{
			Graph:       req.Graph,
			Diagnostics: validator.Validate(req.Graph, o.catalog),
		}, nil
	}

	userPrompt, err := fixUserPrompt(req.Graph, req.Errors)
	if err != nil {
		// The request itself cannot be put to the model, and the
		// deterministic repair would clone the same unserializable graph.
		return nil, &ProtocolError{Code: CodeLLMCallFailed, Message: "building fix request", Err: err}
	}
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: fixSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}

	var fixed *graph.NodeGraph
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := o.converse(ctx, messages)
		if err != nil {
			o.log.Warnw("fix call failed", "attempt", attempt, "error", err)
			continue
		}
		fixed, _, err = coerceGraph(content)
		if err != nil {
			o.log.Warnw("fix response unusable", "attempt", attempt, "error", err)
			fixed = nil
			continue
		}
		break
	}

	result := &FixResult{}
	if fixed == nil {
		fixed = applyFallbackRepair(req.Graph, req.Errors, o.catalog)
		result.Fallback = true
		o.log.Infow("fix fell back to deterministic repair", "graph", req.Graph.ID)
	}

	result.Graph = fixed
	result.Diagnostics = validator.Validate(fixed, o.catalog)
	return result, nil
}

// capabilities digests the catalog into one line per node type for the plan
// prompt.
func (o *Orchestrator) capabilities() []string {
	entries := o.catalog.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		line := e.ID
		if e.Description != "" {
			line += ": " + e.Description
		}
		out = append(out, line)
	}
	return out
}
