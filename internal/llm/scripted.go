package llm

import (
	"context"
	"fmt"
	"sync"
)

// Scripted returns predetermined responses in order, enabling deterministic
// orchestrator tests with no live model. A Step may carry an error instead
// of a response to simulate transport failure.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Scripted struct {
	mu       sync.Mutex
	steps    []Step
	idx      int
	Requests []Request // every request received, for assertions
}

// Step is one scripted turn.
type Step struct {
	Response Response
	Err      error
}

// NewScripted creates a generator that replies with steps in order and
// fails once the script is exhausted.
func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

// Reply is shorthand for a plain-content step.
func Reply(content string) Step {
	return Step{Response: Response{Content: content}}
}

// Fail is shorthand for an error step.
func Fail(err error) Step {
	return Step{Err: err}
}

func (s *Scripted) Generate(_ context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.idx >= len(s.steps) {
		return Response{}, fmt.Errorf("scripted generator exhausted after %d calls", len(s.steps))
	}
	step := s.steps[s.idx]
	s.idx++
	if step.Err != nil {
		return Response{}, step.Err
	}
	return step.Response, nil
}

// Calls reports how many requests the script has served.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}
