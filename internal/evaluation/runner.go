package evaluation

import (
	"context"
	"time"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

// SearchProvider is the slice of the search facade the runner needs.
type SearchProvider interface {
	Search(ctx context.Context, sessionID, query string, maxResults int) (*entities.SearchResponse, error)
}

// Runner replays golden queries against the live pipeline and scores the
// retrieved rankings. Each query runs in its own session so conversational
// state never leaks between them.
type Runner struct {
	search SearchProvider
}

func NewRunner(search SearchProvider) *Runner {
	return &Runner{search: search}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	results := make([]EvalResult, 0, len(queries))

	for _, gq := range queries {
		start := time.Now()
		resp, err := r.search.Search(ctx, "eval-"+gq.ID, gq.Query, 10)
		latency := time.Since(start)
		if err != nil {
			continue
		}

		retrieved := make([]string, len(resp.Results))
		for i, res := range resp.Results {
			retrieved[i] = res.VehicleID
		}

		results = append(results, EvalResult{
			QueryID:      gq.ID,
			Query:        gq.Query,
			Intent:       gq.Intent,
			RecallAt10:   RecallAtK(gq.ExpectedVehicles, retrieved, 10),
			MRRAt10:      MRRAtK(gq.ExpectedVehicles, retrieved, 10),
			ResultCount:  resp.TotalCount,
			StrategyUsed: string(resp.StrategyUsed),
			Latency:      latency,
		})
	}

	return Summarize(results), nil
}
