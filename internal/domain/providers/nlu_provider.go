package providers

import (
	"context"

	"github.com/velora/vehicle-discovery/internal/evaluation"
)

// Entity is one (type, raw value) pair extracted from a query.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NLUResult is the provider's read of one query.
type NLUResult struct {
	Intent     evaluation.Intent `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   []Entity          `json:"entities"`
}

// NLUProvider extracts intent and entities from free text. A provider
// failure is recoverable: the pipeline falls back to a raw semantic query.
type NLUProvider interface {
	Understand(ctx context.Context, text string) (*NLUResult, error)
}
