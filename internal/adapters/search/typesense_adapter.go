package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	"github.com/velora/vehicle-discovery/internal/domain/repositories"
	tsclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements exact-filter retrieval using Typesense.
type TypesenseAdapter struct {
	client  *tsclient.Client
	breaker *gobreaker.CircuitBreaker
}

// Ensure TypesenseAdapter implements the backend contracts
var (
	_ repositories.ExactSearchBackend = (*TypesenseAdapter)(nil)
	_ repositories.VehicleIndexer     = (*TypesenseAdapter)(nil)
	_ repositories.VehicleReader      = (*TypesenseAdapter)(nil)
)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "typesense",
			Timeout: 10 * time.Second,
		}),
	}
}

// Query evaluates constraint groups and returns relevance-ordered hits.
func (a *TypesenseAdapter) Query(ctx context.Context, groups []entities.ConstraintGroup, limit int) ([]repositories.ExactHit, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String("*"),
		QueryBy: pointer.String("make,model,description"),
		PerPage: pointer.Int(limit),
	}
	if expr := BuildFilterExpression(groups); expr != "" {
		searchParams.FilterBy = pointer.String(expr)
	}

	raw, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.Client().Collection(tsclient.VehiclesCollection).Documents().Search(ctx, searchParams)
	})
	if err != nil {
		return nil, fmt.Errorf("typesense search: %w", err)
	}
	result := raw.(*api.SearchResult)

	matched := MaxGroupSize(groups)
	hits := []repositories.ExactHit{}
	if result.Hits == nil {
		return hits, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		id, ok := doc["id"].(string)
		if !ok {
			continue
		}
		hits = append(hits, repositories.ExactHit{
			VehicleID:         id,
			MatchedFieldCount: matched,
		})
	}

	return hits, nil
}

// FindByIDs fetches vehicle documents by id for result summaries.
func (a *TypesenseAdapter) FindByIDs(ctx context.Context, ids []string) ([]entities.Vehicle, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("make,model,description"),
		FilterBy: pointer.String("id: [" + strings.Join(ids, ", ") + "]"),
		PerPage:  pointer.Int(len(ids)),
	}

	raw, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.Client().Collection(tsclient.VehiclesCollection).Documents().Search(ctx, searchParams)
	})
	if err != nil {
		return nil, fmt.Errorf("typesense document lookup: %w", err)
	}
	result := raw.(*api.SearchResult)

	vehicles := []entities.Vehicle{}
	if result.Hits == nil {
		return vehicles, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		vehicles = append(vehicles, documentToVehicle(*hit.Document))
	}
	return vehicles, nil
}

func documentToVehicle(doc map[string]interface{}) entities.Vehicle {
	v := entities.Vehicle{}
	if s, ok := doc["id"].(string); ok {
		v.ID = s
	}
	if s, ok := doc["make"].(string); ok {
		v.Make = s
	}
	if s, ok := doc["model"].(string); ok {
		v.Model = s
	}
	if s, ok := doc["body_type"].(string); ok {
		v.BodyType = s
	}
	if s, ok := doc["fuel_type"].(string); ok {
		v.FuelType = s
	}
	if s, ok := doc["transmission"].(string); ok {
		v.Transmission = s
	}
	if s, ok := doc["color"].(string); ok {
		v.Color = s
	}
	if n, ok := doc["price"].(float64); ok {
		v.Price = n
	}
	if n, ok := doc["mileage_km"].(float64); ok {
		v.MileageKm = int(n)
	}
	if n, ok := doc["first_registration"].(float64); ok {
		v.FirstRegistration = time.Unix(int64(n), 0).UTC()
	}
	if s, ok := doc["description"].(string); ok {
		v.Description = s
	}
	if b, ok := doc["is_active"].(bool); ok {
		v.IsActive = b
	}
	return v
}

// Index indexes a vehicle listing
func (a *TypesenseAdapter) Index(ctx context.Context, vehicle *entities.Vehicle) error {
	document := map[string]interface{}{
		"id":                 vehicle.ID,
		"make":               vehicle.Make,
		"model":              vehicle.Model,
		"body_type":          vehicle.BodyType,
		"fuel_type":          vehicle.FuelType,
		"transmission":       vehicle.Transmission,
		"color":              vehicle.Color,
		"price":              vehicle.Price,
		"mileage_km":         vehicle.MileageKm,
		"first_registration": vehicle.FirstRegistration.Unix(),
		"description":        vehicle.Description,
		"is_active":          vehicle.IsActive,
		"created_at":         vehicle.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(tsclient.VehiclesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index vehicle: %w", err)
	}

	return nil
}

// Delete removes a vehicle from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.VehiclesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle from index: %w", err)
	}
	return nil
}
