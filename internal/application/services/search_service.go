package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/velora/vehicle-discovery/pkg/errors"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/domain/repositories"
	"github.com/velora/vehicle-discovery/internal/infrastructure/observability"
)

const (
	// DefaultMaxResults applies when the caller does not ask for a page size.
	DefaultMaxResults = 10

	// summaryHydrationLimit caps how many result documents are fetched to
	// build the turn summary.
	summaryHydrationLimit = 20
)

// SearchService is the public facade over the conversational search
// pipeline. Guardrail validation runs strictly before anything else; an NLU
// failure degrades the turn to a raw semantic query instead of failing it.
type SearchService struct {
	guardrail   providers.GuardrailValidator
	nlu         providers.NLUProvider
	mapper      *AttributeMapper
	sessions    *ConversationContextService
	composer    *QueryComposerService
	selector    *StrategySelectorService
	coordinator *SearchCoordinatorService

	// Optional collaborators; nil disables the concern.
	vehicles repositories.VehicleReader
	events   providers.EventBus
	metrics  *observability.Metrics
}

// NewSearchService creates a new search service
func NewSearchService(
	guardrail providers.GuardrailValidator,
	nlu providers.NLUProvider,
	mapper *AttributeMapper,
	sessions *ConversationContextService,
	composer *QueryComposerService,
	selector *StrategySelectorService,
	coordinator *SearchCoordinatorService,
) *SearchService {
	return &SearchService{
		guardrail:   guardrail,
		nlu:         nlu,
		mapper:      mapper,
		sessions:    sessions,
		composer:    composer,
		selector:    selector,
		coordinator: coordinator,
	}
}

// WithVehicleReader enables result-summary hydration.
func (s *SearchService) WithVehicleReader(r repositories.VehicleReader) *SearchService {
	s.vehicles = r
	return s
}

// WithEventBus enables analytics event publishing.
func (s *SearchService) WithEventBus(bus providers.EventBus) *SearchService {
	s.events = bus
	return s
}

// WithMetrics enables pipeline metrics.
func (s *SearchService) WithMetrics(m *observability.Metrics) *SearchService {
	s.metrics = m
	return s
}

// Search runs one conversational turn end to end.
func (s *SearchService) Search(ctx context.Context, sessionID, query string, maxResults int) (*entities.SearchResponse, error) {
	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()

	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}
	if query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults < 1 || maxResults > maxResultsCeiling {
		return nil, apperrors.NewValidationError("max_results must be between 1 and 100")
	}

	started := time.Now()

	decision := s.guardrail.Validate(ctx, sessionID, query)
	if !decision.Accepted {
		if s.metrics != nil {
			s.metrics.GuardrailRejections.Add(ctx, 1)
		}
		log.Info().Str("session_id", sessionID).Str("reason", decision.Reason).Msg("query rejected by guardrails")
		return nil, apperrors.NewGuardrailError(decision.Reason)
	}

	nluResult, err := s.nlu.Understand(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("nlu failed, degrading to raw semantic query")
		nluResult = nil
	}

	current := s.mapper.Map(ctx, nluResult)

	resolved, err := s.sessions.Resolve(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}

	composed := s.composer.Compose(ctx, query, current, resolved.Inherited, resolved.Synthesized)

	strategy, err := s.selector.DetermineStrategy(composed)
	if err != nil {
		return nil, err
	}

	response, err := s.coordinator.Execute(ctx, composed, strategy, maxResults)
	if err != nil {
		if s.metrics != nil && apperrors.IsType(err, apperrors.ErrorTypeBackendTimeout) {
			s.metrics.BackendTimeoutCount.Add(ctx, 1)
		}
		return nil, err
	}

	response.HasConflicts = composed.HasConflicts
	response.SessionExpired = resolved.SessionExpired

	summary := s.summarize(ctx, response.Results)
	s.sessions.RecordTurn(ctx, sessionID, query, composedConstraints(composed), summary)

	latency := time.Since(started)
	if s.metrics != nil {
		observability.RecordSearchMetric(ctx, s.metrics, string(strategy.Type), len(response.Results), latency)
	}
	s.publishEvent(sessionID, query, composed, response, latency)

	return response, nil
}

// GetHistory returns the session's turns in order.
func (s *SearchService) GetHistory(ctx context.Context, sessionID string) ([]entities.ConversationTurn, error) {
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session_id is required")
	}
	return s.sessions.History(ctx, sessionID)
}

// ClearHistory empties the session; the id stays valid for later turns.
func (s *SearchService) ClearHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.NewValidationError("session_id is required")
	}
	s.sessions.Clear(ctx, sessionID)
	return nil
}

// summarize hydrates the top results and aggregates the facts later turns
// may refer back to. Hydration failures degrade to a count-only summary.
func (s *SearchService) summarize(ctx context.Context, results []entities.VehicleResult) entities.ResultSummary {
	summary := entities.ResultSummary{Count: len(results)}
	if s.vehicles == nil || len(results) == 0 {
		return summary
	}

	limit := len(results)
	if limit > summaryHydrationLimit {
		limit = summaryHydrationLimit
	}
	ids := make([]string, 0, limit)
	for _, r := range results[:limit] {
		ids = append(ids, r.VehicleID)
	}

	vehicles, err := s.vehicles.FindByIDs(ctx, ids)
	if err != nil || len(vehicles) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("result summary hydration failed")
		}
		return summary
	}

	var priceSum, mileageSum float64
	makes := map[string]int{}
	models := map[string]int{}
	registrations := make([]time.Time, 0, len(vehicles))
	for _, v := range vehicles {
		priceSum += v.Price
		mileageSum += float64(v.MileageKm)
		makes[v.Make]++
		models[v.Model]++
		if !v.FirstRegistration.IsZero() {
			registrations = append(registrations, v.FirstRegistration)
		}
	}

	n := float64(len(vehicles))
	summary.AveragePrice = priceSum / n
	summary.AverageMileage = mileageSum / n
	summary.TopMake = mostFrequent(makes)
	summary.TopModel = mostFrequent(models)
	if len(registrations) > 0 {
		sort.Slice(registrations, func(i, j int) bool { return registrations[i].Before(registrations[j]) })
		summary.MedianRegistration = registrations[len(registrations)/2]
	}
	return summary
}

func (s *SearchService) publishEvent(sessionID, query string, composed *entities.ComposedQuery, response *entities.SearchResponse, latency time.Duration) {
	if s.events == nil {
		return
	}
	event := &entities.SearchEvent{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		Query:          query,
		QueryType:      composed.QueryType,
		StrategyUsed:   response.StrategyUsed,
		ResultCount:    len(response.Results),
		HasConflicts:   response.HasConflicts,
		Partial:        response.Partial,
		SessionExpired: response.SessionExpired,
		LatencyMs:      int(latency.Milliseconds()),
		CreatedAt:      time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, providers.SearchEventsChannel, event); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish search event")
		}
	}()
}

func composedConstraints(q *entities.ComposedQuery) []entities.SearchConstraint {
	var out []entities.SearchConstraint
	for _, g := range q.Groups {
		out = append(out, g.Constraints...)
	}
	return out
}

func mostFrequent(counts map[string]int) string {
	best, bestCount := "", 0
	for k, c := range counts {
		if k == "" {
			continue
		}
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}
