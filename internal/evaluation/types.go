package evaluation

import "time"

// Intent represents the detected search intent category.
type Intent string

const (
	IntentBrowse  Intent = "browse"  // e.g., "show me some SUVs"
	IntentFilter  Intent = "filter"  // e.g., "BMW under 20000"
	IntentRefine  Intent = "refine"  // e.g., "cheaper ones", "newer"
	IntentLookup  Intent = "lookup"  // e.g., "2021 Golf GTI"
	IntentUnknown Intent = "unknown" // off-topic or unintelligible
)

// ValidIntents returns all valid intent values.
func ValidIntents() []Intent {
	return []Intent{IntentBrowse, IntentFilter, IntentRefine, IntentLookup, IntentUnknown}
}

// IsValid checks if the intent value is one of the defined constants.
func (i Intent) IsValid() bool {
	switch i {
	case IntentBrowse, IntentFilter, IntentRefine, IntentLookup, IntentUnknown:
		return true
	}
	return false
}

// GoldenQuery represents a labeled test query with expected outcomes.
type GoldenQuery struct {
	ID               string   `json:"id"`
	Query            string   `json:"query"`
	Intent           Intent   `json:"intent"`
	ExpectedVehicles []string `json:"expected_vehicles"`
	ExpectedStrategy string   `json:"expected_strategy"`
	Difficulty       string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID      string
	Query        string
	Intent       Intent
	RecallAt10   float64
	MRRAt10      float64
	ResultCount  int
	StrategyUsed string
	Latency      time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries    int
	AvgRecallAt10   float64
	AvgMRRAt10      float64
	AvgLatency      time.Duration
	QueriesWithHits int // queries that returned at least 1 result
	ByIntent        map[Intent]*IntentSummary
}

// IntentSummary holds metrics grouped by intent type.
type IntentSummary struct {
	Count         int
	AvgRecallAt10 float64
	AvgMRRAt10    float64
}

// Summarize aggregates per-query results into an EvalSummary.
func Summarize(results []EvalResult) *EvalSummary {
	summary := &EvalSummary{
		TotalQueries: len(results),
		ByIntent:     make(map[Intent]*IntentSummary),
	}
	if len(results) == 0 {
		return summary
	}

	var totalRecall, totalMRR float64
	var totalLatency time.Duration
	for _, r := range results {
		totalRecall += r.RecallAt10
		totalMRR += r.MRRAt10
		totalLatency += r.Latency
		if r.ResultCount > 0 {
			summary.QueriesWithHits++
		}

		is, ok := summary.ByIntent[r.Intent]
		if !ok {
			is = &IntentSummary{}
			summary.ByIntent[r.Intent] = is
		}
		is.Count++
		is.AvgRecallAt10 += r.RecallAt10
		is.AvgMRRAt10 += r.MRRAt10
	}

	n := float64(len(results))
	summary.AvgRecallAt10 = totalRecall / n
	summary.AvgMRRAt10 = totalMRR / n
	summary.AvgLatency = totalLatency / time.Duration(len(results))
	for _, is := range summary.ByIntent {
		is.AvgRecallAt10 /= float64(is.Count)
		is.AvgMRRAt10 /= float64(is.Count)
	}
	return summary
}
