package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/shinobi1046-lgtm/Startup1-sub004/internal/graph"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any so it can be
// passed through graph.MarshalCanonical, which sorts keys and normalizes
// strings for byte-stable output.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"phase":   event.Phase,
			"outcome": event.Outcome,
			"errors":  float64(event.Errors),
			"warns":   float64(event.Warns),
			"seq":     float64(event.Seq),
		}
		if len(event.Nodes) > 0 {
			nodes := make([]any, len(event.Nodes))
			for j, id := range event.Nodes {
				nodes[j] = id
			}
			eventMap["nodes"] = nodes
		}
		if event.Fallback {
			eventMap["fallback"] = true
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; trace mismatches fail the
// test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
	}

	traceJSON, err := graph.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
