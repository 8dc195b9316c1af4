// Package harness provides a scenario testing framework for the planning
// pipeline. Scenarios are YAML files that script the model's side of the
// clarify/plan/fix conversation and assert on the resulting graph,
// diagnostics, and compiled bundle. Because the model transcript is fixed,
// runs are fully deterministic and traces can be compared against golden
// files.
//
// The harness runs the real orchestrator, validator, and compiler; only the
// model transport is substituted. A scenario with an empty script makes
// every model call fail, which exercises the deterministic fallback paths.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/catalog"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/compiler"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/llm"
	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/orchestrator"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh builtin catalog and a scripted model,
// so runs are isolated and reproducible.
//
// Execution flow:
//  1. Build the scripted generator from the scenario transcript
//  2. Optionally run the clarify phase; stop early if more info is needed
//  3. Run the plan phase (which re-validates and auto-fixes internally)
//  4. Optionally compile the planned graph
//  5. Evaluate assertions against the outcome
func Run(scenario *Scenario) (*Result, error) {
	cat, err := catalog.New(catalog.Builtin())
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	steps := make([]llm.Step, 0, len(scenario.Script))
	for _, s := range scenario.Script {
		if s.Fail != "" {
			steps = append(steps, llm.Fail(errors.New(s.Fail)))
			continue
		}
		steps = append(steps, llm.Reply(s.Reply))
	}
	gen := llm.NewScripted(steps...)

	orch := orchestrator.New(gen, cat, zap.NewNop().Sugar())
	ctx := context.Background()
	result := NewResult()

	if scenario.Clarify {
		done, err := runClarify(ctx, orch, scenario, result)
		if err != nil {
			return nil, err
		}
		if done {
			EvaluateAssertions(result, scenario.Assertions)
			return result, nil
		}
	}

	if err := runPlan(ctx, orch, scenario, result); err != nil {
		return nil, err
	}

	if scenario.Compile && result.Graph != nil && !graph.HasErrors(result.Diagnostics) {
		runCompile(cat, result)
	}

	EvaluateAssertions(result, scenario.Assertions)
	return result, nil
}

// runClarify executes the clarify phase. It returns true when the run
// should stop before planning, either because the model asked questions or
// because clarification failed outright.
func runClarify(ctx context.Context, orch *orchestrator.Orchestrator, scenario *Scenario, result *Result) (bool, error) {
	res, err := orch.Clarify(ctx, scenario.Prompt)
	if err != nil {
		var perr *orchestrator.ProtocolError
		if !errors.As(err, &perr) {
			return false, fmt.Errorf("clarify: %w", err)
		}
		result.AddTrace(TraceEvent{Phase: "clarify", Outcome: perr.Code})
		return true, nil
	}

	if res.NeedsMoreInfo {
		result.AddTrace(TraceEvent{
			Phase:   "clarify",
			Outcome: fmt.Sprintf("needs_more_info (%d questions)", len(res.Questions)),
		})
		return true, nil
	}

	result.AddTrace(TraceEvent{Phase: "clarify", Outcome: "ready"})
	return false, nil
}

// runPlan executes the plan phase and records its trace event.
func runPlan(ctx context.Context, orch *orchestrator.Orchestrator, scenario *Scenario, result *Result) error {
	res, err := orch.Plan(ctx, orchestrator.PlanRequest{
		Prompt:  scenario.Prompt,
		Answers: scenario.Answers,
	})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	result.Graph = res.Graph
	result.Diagnostics = res.Diagnostics
	result.Fallback = res.Fallback

	errCount := len(graph.Errors(res.Diagnostics))
	result.AddTrace(TraceEvent{
		Phase:    "plan",
		Outcome:  "planned",
		Nodes:    nodeIDs(res.Graph),
		Errors:   errCount,
		Warns:    len(res.Diagnostics) - errCount,
		Fallback: res.Fallback,
	})
	return nil
}

// runCompile compiles the planned graph and records its trace event. A
// compile failure is an assertion-visible outcome, not a harness error.
func runCompile(cat *catalog.Catalog, result *Result) {
	bundle, err := compiler.Compile(result.Graph, cat)
	if err != nil {
		result.AddTrace(TraceEvent{Phase: "compile", Outcome: "failed: " + err.Error()})
		return
	}
	result.Bundle = bundle
	result.AddTrace(TraceEvent{
		Phase:   "compile",
		Outcome: fmt.Sprintf("emitted %d files", bundle.Stats.FileCount),
	})
}

// nodeIDs returns the graph's node ids in lexicographic order.
func nodeIDs(g *graph.NodeGraph) []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}
