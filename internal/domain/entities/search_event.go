package entities

import "time"

// SearchEvent represents a single search interaction for analytics.
type SearchEvent struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"session_id"`
	Query          string       `json:"query"`
	QueryType      QueryType    `json:"query_type"`
	StrategyUsed   StrategyType `json:"strategy_used"`
	ResultCount    int          `json:"result_count"`
	HasConflicts   bool         `json:"has_conflicts"`
	Partial        bool         `json:"partial"`
	SessionExpired bool         `json:"session_expired"`
	LatencyMs      int          `json:"latency_ms"`
	CreatedAt      time.Time    `json:"created_at"`
}
