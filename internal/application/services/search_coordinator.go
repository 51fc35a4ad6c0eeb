package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
	"github.com/velora/vehicle-discovery/pkg/retry"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
	"github.com/velora/vehicle-discovery/internal/domain/repositories"
)

const (
	// rrfK dampens the rank contribution so the head of each list does not
	// dominate fusion.
	rrfK = 60

	maxResultsCeiling = 100

	// hybridFetchFactor over-fetches each backend so fusion has enough
	// overlap to rerank from.
	hybridFetchFactor = 3
)

// CoordinatorConfig carries the per-request execution limits.
type CoordinatorConfig struct {
	BackendTimeout time.Duration
	OverallTimeout time.Duration
	RetryBackoff   time.Duration
}

// DefaultCoordinatorConfig mirrors the production timeouts.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		BackendTimeout: 2500 * time.Millisecond,
		OverallTimeout: 3 * time.Second,
		RetryBackoff:   100 * time.Millisecond,
	}
}

// SearchCoordinatorService fans a strategy out over the retrieval backends,
// fuses their rankings, and degrades to partial results when one backend of
// a hybrid pair fails.
type SearchCoordinatorService struct {
	exact    repositories.ExactSearchBackend
	semantic repositories.SemanticSearchBackend
	cfg      CoordinatorConfig
}

// NewSearchCoordinatorService creates a new search coordinator
func NewSearchCoordinatorService(exact repositories.ExactSearchBackend, semantic repositories.SemanticSearchBackend, cfg CoordinatorConfig) *SearchCoordinatorService {
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultCoordinatorConfig().BackendTimeout
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = DefaultCoordinatorConfig().OverallTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultCoordinatorConfig().RetryBackoff
	}
	return &SearchCoordinatorService{exact: exact, semantic: semantic, cfg: cfg}
}

// Execute runs the strategy's backends concurrently and returns the scored,
// truncated ranking. maxResults outside [1, 100] fails before any backend
// is invoked.
func (s *SearchCoordinatorService) Execute(ctx context.Context, query *entities.ComposedQuery, strategy *entities.SearchStrategy, maxResults int) (*entities.SearchResponse, error) {
	if query == nil || strategy == nil {
		return nil, apperrors.NewValidationError("query and strategy are required")
	}
	if maxResults < 1 || maxResults > maxResultsCeiling {
		return nil, apperrors.NewValidationError("maxResults must be between 1 and 100")
	}

	fetchLimit := maxResults
	if strategy.Type == entities.StrategyHybrid {
		fetchLimit = maxResults * hybridFetchFactor
		if fetchLimit > maxResultsCeiling {
			fetchLimit = maxResultsCeiling
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.OverallTimeout)
	defer cancel()

	var (
		exactHits    []repositories.ExactHit
		semanticHits []repositories.SemanticHit
		exactErr     error
		semanticErr  error
	)

	// Backend failures are captured per leg rather than returned from the
	// group, so one failing backend cannot cancel the other.
	g, gctx := errgroup.WithContext(ctx)

	if strategy.Uses(entities.ApproachExactMatch) {
		g.Go(func() error {
			hits, err := s.queryExact(gctx, query.Groups, fetchLimit)
			exactHits, exactErr = hits, err
			return nil
		})
	}
	if strategy.Uses(entities.ApproachSemanticSearch) {
		g.Go(func() error {
			hits, err := s.querySemantic(gctx, query.SemanticQueryText(), fetchLimit)
			semanticHits, semanticErr = hits, err
			return nil
		})
	}
	_ = g.Wait()

	partial := false
	switch strategy.Type {
	case entities.StrategyExactOnly:
		if exactErr != nil {
			return nil, exactErr
		}
	case entities.StrategySemanticOnly:
		if semanticErr != nil {
			return nil, semanticErr
		}
	case entities.StrategyHybrid:
		if exactErr != nil && semanticErr != nil {
			return nil, exactErr
		}
		if exactErr != nil || semanticErr != nil {
			partial = true
			failed := "exact"
			err := exactErr
			if semanticErr != nil {
				failed, err = "semantic", semanticErr
			}
			log.Warn().Err(err).Str("backend", failed).Msg("hybrid search degraded to single backend")
		}
	}

	results := fuseRankings(query, exactHits, semanticHits, strategy)
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return &entities.SearchResponse{
		Results:      results,
		TotalCount:   len(results),
		StrategyUsed: strategy.Type,
		Partial:      partial,
	}, nil
}

func (s *SearchCoordinatorService) queryExact(ctx context.Context, groups []entities.ConstraintGroup, limit int) ([]repositories.ExactHit, error) {
	var hits []repositories.ExactHit
	err := retry.Do(ctx, retry.RequestConfig(s.cfg.RetryBackoff), func() error {
		bctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
		defer cancel()
		var qerr error
		hits, qerr = s.exact.Query(bctx, groups, limit)
		return qerr
	})
	if err != nil {
		return nil, translateBackendError("exact", err)
	}
	return hits, nil
}

func (s *SearchCoordinatorService) querySemantic(ctx context.Context, queryText string, limit int) ([]repositories.SemanticHit, error) {
	var hits []repositories.SemanticHit
	err := retry.Do(ctx, retry.RequestConfig(s.cfg.RetryBackoff), func() error {
		bctx, cancel := context.WithTimeout(ctx, s.cfg.BackendTimeout)
		defer cancel()
		var qerr error
		hits, qerr = s.semantic.Query(bctx, queryText, limit)
		return qerr
	})
	if err != nil {
		return nil, translateBackendError("semantic", err)
	}
	return hits, nil
}

func translateBackendError(backend string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewBackendTimeoutError(backend, err)
	}
	return apperrors.NewBackendUnavailableError(backend, err)
}

type fusedCandidate struct {
	vehicleID     string
	exactRank     int // 1-based, 0 when absent
	semanticRank  int
	matchedFields int
	similarity    float64
}

// maxMatchableFields returns the largest filterable constraint count across
// the query's groups. A hit satisfied every conjunct of exactly one group,
// so this bounds the matched-field count a backend can report.
func maxMatchableFields(query *entities.ComposedQuery) int {
	most := 0
	for _, g := range query.Groups {
		n := 0
		for _, c := range g.Constraints {
			if c.Kind != entities.KindSemantic {
				n++
			}
		}
		if n > most {
			most = n
		}
	}
	return most
}

// exactMatchScore normalizes a hit's matched-field count into (0, 1]. Hits
// from backends that do not report a count score as full matches.
func exactMatchScore(matched, matchable int) float64 {
	if matchable <= 0 || matched <= 0 || matched >= matchable {
		return 1.0
	}
	return float64(matched) / float64(matchable)
}

// fuseRankings scores the backend lists for the strategy. Single-backend
// strategies carry that backend's normalized score straight through as the
// final score; Hybrid combines both lists with weighted reciprocal rank
// fusion, where a vehicle absent from one list simply contributes nothing
// from that list. The breakdown always carries each backend's raw
// normalized score, 0 when absent. Ties break on raw similarity descending,
// then vehicle id ascending, so the ordering is deterministic for identical
// inputs.
func fuseRankings(query *entities.ComposedQuery, exactHits []repositories.ExactHit, semanticHits []repositories.SemanticHit, strategy *entities.SearchStrategy) []entities.VehicleResult {
	matchable := maxMatchableFields(query)
	candidates := make(map[string]*fusedCandidate)

	for i, h := range exactHits {
		candidates[h.VehicleID] = &fusedCandidate{vehicleID: h.VehicleID, exactRank: i + 1, matchedFields: h.MatchedFieldCount}
	}
	for i, h := range semanticHits {
		c, ok := candidates[h.VehicleID]
		if !ok {
			c = &fusedCandidate{vehicleID: h.VehicleID}
			candidates[h.VehicleID] = c
		}
		c.semanticRank = i + 1
		c.similarity = h.Similarity
	}

	exactWeight := strategy.Weight(entities.ApproachExactMatch)
	semanticWeight := strategy.Weight(entities.ApproachSemanticSearch)

	results := make([]entities.VehicleResult, 0, len(candidates))
	for _, c := range candidates {
		var rawExact float64
		if c.exactRank > 0 {
			rawExact = exactMatchScore(c.matchedFields, matchable)
		}

		var final float64
		switch strategy.Type {
		case entities.StrategyExactOnly:
			final = rawExact
		case entities.StrategySemanticOnly:
			final = c.similarity
		default:
			if c.exactRank > 0 {
				final += exactWeight / float64(rrfK+c.exactRank)
			}
			if c.semanticRank > 0 {
				final += semanticWeight / float64(rrfK+c.semanticRank)
			}
		}

		results = append(results, entities.VehicleResult{
			VehicleID: c.vehicleID,
			Score:     final,
			ScoreBreakdown: entities.ScoreBreakdown{
				ExactMatchScore: rawExact,
				SemanticScore:   c.similarity,
				FinalScore:      final,
			},
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].ScoreBreakdown.SemanticScore != results[j].ScoreBreakdown.SemanticScore {
			return results[i].ScoreBreakdown.SemanticScore > results[j].ScoreBreakdown.SemanticScore
		}
		return results[i].VehicleID < results[j].VehicleID
	})

	return results
}
