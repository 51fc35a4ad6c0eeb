package providers

import "context"

// GuardrailDecision is the outcome of pre-pipeline validation.
type GuardrailDecision struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// GuardrailValidator screens queries before they reach the search pipeline.
// A rejection never reaches the attribute mapper.
type GuardrailValidator interface {
	Validate(ctx context.Context, sessionID, text string) GuardrailDecision
}
