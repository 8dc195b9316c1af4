package orchestrator

import "fmt"

// Stable machine-readable error codes carried by every thrown error.
const (
	// CodeClarificationFailed: the model's clarify response could not be
	// interpreted, or the call itself failed. Clarify has no safe fallback:
	// a fabricated answer to "does the user need to say more?" would be worse
	// than failing, so this surfaces to the caller.
	CodeClarificationFailed = "CLARIFICATION_FAILED"
	// CodeLLMCallFailed: a plan/fix model interaction failed in a way the
	// deterministic fallback cannot absorb, such as a fix request that
	// cannot be serialized for the model.
	CodeLLMCallFailed = "LLM_CALL_FAILED"
)

// ProtocolError is a hard failure of the clarify/plan/fix protocol.
type ProtocolError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
