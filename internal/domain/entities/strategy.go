package entities

// StrategyType identifies which retrieval mix a query runs with.
type StrategyType string

const (
	StrategyExactOnly    StrategyType = "exact_only"
	StrategySemanticOnly StrategyType = "semantic_only"
	StrategyHybrid       StrategyType = "hybrid"
)

// SearchApproach is a single retrieval backend invocation kind.
type SearchApproach string

const (
	ApproachExactMatch     SearchApproach = "exact_match"
	ApproachSemanticSearch SearchApproach = "semantic_search"
)

// SearchStrategy describes which approaches to run and how to weight them.
// Weights sum to 1.0 whenever more than one approach is present.
type SearchStrategy struct {
	Type         StrategyType               `json:"type"`
	Approaches   []SearchApproach           `json:"approaches"`
	Weights      map[SearchApproach]float64 `json:"weights"`
	ShouldRerank bool                       `json:"should_rerank"`
}

// Weight returns the weight for an approach, 0 when absent.
func (s *SearchStrategy) Weight(a SearchApproach) float64 {
	return s.Weights[a]
}

// Uses reports whether the strategy runs the given approach.
func (s *SearchStrategy) Uses(a SearchApproach) bool {
	for _, ap := range s.Approaches {
		if ap == a {
			return true
		}
	}
	return false
}
