package entities

import "time"

// ResultSummary captures aggregate facts about one turn's results. It is the
// only thing comparative markers in a later turn may resolve against.
type ResultSummary struct {
	Count              int       `json:"count"`
	TopMake            string    `json:"top_make,omitempty"`
	TopModel           string    `json:"top_model,omitempty"`
	AveragePrice       float64   `json:"average_price,omitempty"`
	AverageMileage     float64   `json:"average_mileage,omitempty"`
	MedianRegistration time.Time `json:"median_registration,omitempty"`
}

// ConversationTurn is one request/response exchange. Owned exclusively by the
// session that created it and never mutated after creation; later turns read
// it only as a snapshot.
type ConversationTurn struct {
	TurnIndex   int                `json:"turn_index"`
	Query       string             `json:"query"`
	Constraints []SearchConstraint `json:"constraints"`
	Summary     ResultSummary      `json:"summary"`
	Timestamp   time.Time          `json:"timestamp"`
}

// SessionContext is the per-session turn history. Insertion order is recency
// order. A session is gone once now - LastActivity exceeds ExpiresAfter; a
// later access restarts it empty under the same id.
type SessionContext struct {
	SessionID    string             `json:"session_id"`
	Turns        []ConversationTurn `json:"turns"`
	LastActivity time.Time          `json:"last_activity"`
	ExpiresAfter time.Duration      `json:"expires_after"`
}

// Expired reports whether the session's inactivity window has elapsed.
func (s *SessionContext) Expired(now time.Time) bool {
	return now.Sub(s.LastActivity) > s.ExpiresAfter
}

// LastTurn returns the most recent turn, or nil for an empty session.
func (s *SessionContext) LastTurn() *ConversationTurn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}
