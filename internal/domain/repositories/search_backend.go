package repositories

import (
	"context"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

// ExactHit is one hit from the exact-filter backend, ordered by relevance.
type ExactHit struct {
	VehicleID         string
	MatchedFieldCount int
}

// SemanticHit is one hit from the similarity backend, similarity in [0,1],
// ordered descending.
type SemanticHit struct {
	VehicleID  string
	Similarity float64
}

// ExactSearchBackend evaluates structured constraint groups against the
// filter index. Transport failures surface as backend errors for the
// coordinator to translate.
type ExactSearchBackend interface {
	Query(ctx context.Context, groups []entities.ConstraintGroup, limit int) ([]ExactHit, error)
}

// SemanticSearchBackend runs similarity retrieval over free text.
type SemanticSearchBackend interface {
	Query(ctx context.Context, queryText string, limit int) ([]SemanticHit, error)
}

// VehicleIndexer maintains listings in the search indexes. Used by ingestion,
// not by the query path.
type VehicleIndexer interface {
	Index(ctx context.Context, vehicle *entities.Vehicle) error
	Delete(ctx context.Context, id string) error
}

// VehicleReader hydrates vehicle documents for result summaries. Unknown ids
// are skipped, not errors.
type VehicleReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]entities.Vehicle, error)
}
