package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a planning pipeline test scenario. Scenarios drive the
// orchestrator with a scripted model transcript and assert on the resulting
// graph, diagnostics, and compiled bundle.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name for trace comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Prompt is the user intent fed into the pipeline.
	Prompt string `yaml:"prompt"`

	// Answers are clarification answers keyed by question id, passed
	// through to planning.
	Answers map[string]string `yaml:"answers,omitempty"`

	// Clarify runs the clarify phase before planning when true.
	Clarify bool `yaml:"clarify,omitempty"`

	// Script is the model transcript, consumed in order. Each step is
	// either a reply or a failure. An empty script makes every model call
	// fail, which exercises the deterministic fallback paths.
	Script []ScriptStep `yaml:"script,omitempty"`

	// Compile runs the compiler on the planned graph when true. The
	// compile step is skipped automatically if blocking diagnostics remain.
	Compile bool `yaml:"compile,omitempty"`

	// Assertions validate the final graph, diagnostics, and bundle.
	Assertions []Assertion `yaml:"assertions"`
}

// ScriptStep is one scripted model turn. Exactly one of Reply or Fail must
// be set.
type ScriptStep struct {
	// Reply is the raw model output for this turn.
	Reply string `yaml:"reply,omitempty"`

	// Fail simulates a transport failure with the given message.
	Fail string `yaml:"fail,omitempty"`
}

// Assertion validates one aspect of the scenario outcome.
type Assertion struct {
	// Type selects the assertion:
	//   - "graph_valid": no error-severity diagnostics remain
	//   - "node_count": the graph has exactly Count nodes
	//   - "has_node": some node has the given node Type
	//   - "fallback": the pipeline's fallback flag equals Fallback
	//   - "diagnostic_contains": some diagnostic message contains Message
	//   - "file_contains": the emitted File contains Contains
	Type string `yaml:"type"`

	// Count is the expected node count (node_count).
	Count int `yaml:"count,omitempty"`

	// NodeType is the expected node type (has_node).
	NodeType string `yaml:"node_type,omitempty"`

	// Fallback is the expected fallback flag (fallback).
	Fallback bool `yaml:"fallback,omitempty"`

	// Message is the expected diagnostic substring (diagnostic_contains).
	Message string `yaml:"message,omitempty"`

	// File is the emitted file name (file_contains).
	File string `yaml:"file,omitempty"`

	// Contains is the expected file content substring (file_contains).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertGraphValid         = "graph_valid"
	AssertNodeCount          = "node_count"
	AssertHasNode            = "has_node"
	AssertFallback           = "fallback"
	AssertDiagnosticContains = "diagnostic_contains"
	AssertFileContains       = "file_contains"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos), or
// is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Script {
		if step.Reply == "" && step.Fail == "" {
			return fmt.Errorf("script[%d]: either reply or fail is required", i)
		}
		if step.Reply != "" && step.Fail != "" {
			return fmt.Errorf("script[%d]: reply and fail are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertGraphValid, AssertFallback:
		// no extra fields required
	case AssertNodeCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for node_count", index)
		}
	case AssertHasNode:
		if a.NodeType == "" {
			return fmt.Errorf("assertions[%d]: node_type is required for has_node", index)
		}
	case AssertDiagnosticContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for diagnostic_contains", index)
		}
	case AssertFileContains:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for file_contains", index)
		}
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for file_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
