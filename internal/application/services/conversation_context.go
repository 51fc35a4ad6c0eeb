package services

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/velora/vehicle-discovery/pkg/errors"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

type markerKind int

const (
	markerPronoun markerKind = iota
	markerComparative
)

type boundDirectionKind int

const (
	boundAtMost boundDirectionKind = iota
	boundAtLeast
)

// referenceMarker is one recognized way a query points back at the previous
// turn: a pronoun inheriting its exact constraints, or a comparative
// tightening one field against the previous result summary.
type referenceMarker struct {
	kind      markerKind
	field     string
	direction boundDirectionKind
	pattern   *regexp.Regexp
}

var referenceMarkers = []referenceMarker{
	{kind: markerPronoun, pattern: regexp.MustCompile(`(?i)\b(it|them|those|these|ones?)\b`)},
	{kind: markerComparative, field: FieldPrice, direction: boundAtMost,
		pattern: regexp.MustCompile(`(?i)\b(cheaper|less expensive|lower priced?)\b`)},
	{kind: markerComparative, field: FieldMileage, direction: boundAtMost,
		pattern: regexp.MustCompile(`(?i)\b(lower mileage|fewer miles|less mileage)\b`)},
	{kind: markerComparative, field: FieldFirstRegistration, direction: boundAtLeast,
		pattern: regexp.MustCompile(`(?i)\bnewer\b`)},
}

func detectMarkers(query string) []referenceMarker {
	var found []referenceMarker
	for _, m := range referenceMarkers {
		if m.pattern.MatchString(query) {
			found = append(found, m)
		}
	}
	return found
}

// comparativeBound resolves a comparative marker's field against the
// previous turn's summary. Returns false when the summary cannot anchor it.
func comparativeBound(m referenceMarker, summary entities.ResultSummary) (entities.ConstraintValue, bool) {
	switch m.field {
	case FieldPrice:
		return entities.NumberValue(summary.AveragePrice), summary.AveragePrice > 0
	case FieldMileage:
		return entities.NumberValue(summary.AverageMileage), summary.AverageMileage > 0
	case FieldFirstRegistration:
		return entities.DateValue(summary.MedianRegistration), !summary.MedianRegistration.IsZero()
	}
	return entities.ConstraintValue{}, false
}

func (d boundDirectionKind) operator() entities.Operator {
	if d == boundAtLeast {
		return entities.OpGreaterThanOrEqual
	}
	return entities.OpLessThanOrEqual
}

type sessionEntry struct {
	mu      sync.Mutex
	session *entities.SessionContext
}

// ConversationContextService keeps per-session conversational state and
// resolves references against the previous turn. Sessions expire after a
// fixed TTL of inactivity; an expired session restarts empty under the
// same identifier.
type ConversationContextService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewConversationContextService starts the store and its background sweep.
func NewConversationContextService(ttl, sweepInterval time.Duration) *ConversationContextService {
	s := &ConversationContextService{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

// ResolvedContext is the outcome of resolving one turn against history.
type ResolvedContext struct {
	Inherited      entities.ConstraintGroup
	Synthesized    entities.ConstraintGroup
	SessionExpired bool
	TurnIndex      int
}

// Resolve inspects the query for reference markers and returns the
// constraints carried over or synthesized from the previous turn. A fresh
// or expired session yields empty groups with no error.
func (s *ConversationContextService) Resolve(ctx context.Context, sessionID, query string) (*ResolvedContext, error) {
	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	resolved := &ResolvedContext{}

	now := s.now()
	if entry.session.Expired(now) {
		log.Debug().Str("session_id", sessionID).Msg("session expired, restarting context")
		resolved.SessionExpired = len(entry.session.Turns) > 0
		entry.session.Turns = nil
	}
	entry.session.LastActivity = now
	resolved.TurnIndex = len(entry.session.Turns)

	last := entry.session.LastTurn()
	if last == nil {
		return resolved, nil
	}

	for _, m := range detectMarkers(query) {
		switch m.kind {
		case markerPronoun:
			if len(resolved.Inherited.Constraints) > 0 {
				continue
			}
			for _, c := range last.Constraints {
				if c.Kind == entities.KindExact {
					resolved.Inherited.Constraints = append(resolved.Inherited.Constraints, c)
				}
			}
		case markerComparative:
			if last.Summary.Count == 0 {
				continue
			}
			value, ok := comparativeBound(m, last.Summary)
			if !ok {
				continue
			}
			resolved.Synthesized.Constraints = append(resolved.Synthesized.Constraints, entities.SearchConstraint{
				FieldName: m.field,
				Operator:  m.direction.operator(),
				Value:     value,
				Kind:      entities.KindRange,
			})
		}
	}

	return resolved, nil
}

// RecordTurn appends the completed turn to the session history.
func (s *ConversationContextService) RecordTurn(ctx context.Context, sessionID, query string, constraints []entities.SearchConstraint, summary entities.ResultSummary) {
	entry := s.entryFor(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	if entry.session.Expired(now) {
		entry.session.Turns = nil
	}
	entry.session.Turns = append(entry.session.Turns, entities.ConversationTurn{
		TurnIndex:   len(entry.session.Turns),
		Query:       query,
		Constraints: constraints,
		Summary:     summary,
		Timestamp:   now,
	})
	entry.session.LastActivity = now
}

// History returns a copy of the session's turns in order.
func (s *ConversationContextService) History(ctx context.Context, sessionID string) ([]entities.ConversationTurn, error) {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NewSessionExpiredError(sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session.Expired(s.now()) {
		return nil, apperrors.NewSessionExpiredError(sessionID)
	}
	turns := make([]entities.ConversationTurn, len(entry.session.Turns))
	copy(turns, entry.session.Turns)
	return turns, nil
}

// Clear drops the session's state entirely.
func (s *ConversationContextService) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Close stops the background sweep.
func (s *ConversationContextService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ConversationContextService) entryFor(sessionID string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{session: &entities.SessionContext{
			SessionID:    sessionID,
			LastActivity: s.now(),
			ExpiresAfter: s.ttl,
		}}
		s.sessions[sessionID] = entry
	}
	return entry
}

func (s *ConversationContextService) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *ConversationContextService) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.sessions {
		entry.mu.Lock()
		expired := entry.session.Expired(now)
		entry.mu.Unlock()
		if expired {
			delete(s.sessions, id)
		}
	}
}
