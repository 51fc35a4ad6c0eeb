package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/velora/vehicle-discovery/pkg/config"
	"github.com/velora/vehicle-discovery/pkg/retry"
)

const (
	// VehiclesCollection is the name of the vehicle listings collection.
	VehiclesCollection = "vehicles"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("typesense connection attempt failed")
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the vehicles collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == VehiclesCollection {
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: VehiclesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "make", Type: "string", Facet: pointer.True()},
			{Name: "model", Type: "string", Facet: pointer.True()},
			{Name: "body_type", Type: "string", Facet: pointer.True()},
			{Name: "fuel_type", Type: "string", Facet: pointer.True()},
			{Name: "transmission", Type: "string", Facet: pointer.True()},
			{Name: "color", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "price", Type: "float"},
			{Name: "mileage_km", Type: "int32"},
			{Name: "first_registration", Type: "int64"},
			{Name: "description", Type: "string"},
			{Name: "is_active", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}
