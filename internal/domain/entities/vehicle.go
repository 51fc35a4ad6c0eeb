package entities

import "time"

// Vehicle represents a vehicle listing indexed by the search backends.
type Vehicle struct {
	ID                string    `json:"id"`
	Make              string    `json:"make"`
	Model             string    `json:"model"`
	BodyType          string    `json:"body_type"`
	FuelType          string    `json:"fuel_type"`
	Transmission      string    `json:"transmission"`
	Color             string    `json:"color,omitempty"`
	Price             float64   `json:"price"`
	Currency          string    `json:"currency"`
	MileageKm         int       `json:"mileage_km"`
	FirstRegistration time.Time `json:"first_registration"`
	Description       string    `json:"description"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ScoreBreakdown is the auditable per-signal decomposition of a final score.
type ScoreBreakdown struct {
	ExactMatchScore float64  `json:"exact_match_score"`
	SemanticScore   float64  `json:"semantic_score"`
	KeywordScore    *float64 `json:"keyword_score,omitempty"`
	FinalScore      float64  `json:"final_score"`
}

// VehicleResult is one ranked search hit with its score decomposition.
type VehicleResult struct {
	VehicleID      string         `json:"vehicle_id"`
	Score          float64        `json:"score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	Highlights     []string       `json:"highlights,omitempty"`
}

// SearchResponse is the public result envelope for one search call.
type SearchResponse struct {
	Results        []VehicleResult `json:"results"`
	TotalCount     int             `json:"total_count"`
	StrategyUsed   StrategyType    `json:"strategy_used"`
	HasConflicts   bool            `json:"has_conflicts"`
	SessionExpired bool            `json:"session_expired"`
	Partial        bool            `json:"partial"`
}
