package nlu

import (
	"context"

	"github.com/velora/vehicle-discovery/internal/domain/providers"
)

// MockProvider returns canned NLU results for tests.
type MockProvider struct {
	Results map[string]*providers.NLUResult
	Err     error
}

var _ providers.NLUProvider = (*MockProvider)(nil)

// Understand returns the canned result for the text, or an empty result.
func (m *MockProvider) Understand(_ context.Context, text string) (*providers.NLUResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[text]; ok {
		return r, nil
	}
	return &providers.NLUResult{}, nil
}
