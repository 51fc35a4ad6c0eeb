package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/velora/vehicle-discovery/internal/adapters/search"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	qdrantclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/qdrant"
	typesenseclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/typesense"
	"github.com/velora/vehicle-discovery/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	var vehiclesPath string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.StringVar(&vehiclesPath, "vehicles", "config/vehicles.json", "path to the vehicle listings file")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset, vehiclesPath); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool, vehiclesPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	vehicles, err := loadVehicles(vehiclesPath)
	if err != nil {
		return err
	}

	tsClient, err := typesenseclient.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Reset requested, deleting vehicles collection")
		if _, err := tsClient.Client().Collection(typesenseclient.VehiclesCollection).Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}
	exactAdapter := search.NewTypesenseAdapter(tsClient)

	qdrantClient, err := qdrantclient.NewClient(&cfg.Qdrant)
	if err != nil {
		return err
	}
	defer qdrantClient.Close()
	if err := qdrantClient.EnsureCollection(ctx, cfg.Qdrant.VectorDims); err != nil {
		return err
	}

	var embedder search.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder, err = search.NewOpenAIEmbedder(&cfg.OpenAI)
		if err != nil {
			return err
		}
	} else {
		log.Println("No OpenAI key configured, using deterministic mock embedder")
		embedder = &search.MockEmbedder{Dims: cfg.Qdrant.VectorDims}
	}

	log.Printf("Indexing %d vehicles...", len(vehicles))

	var failed int
	for i := range vehicles {
		v := &vehicles[i]
		if v.ID == "" {
			log.Printf("Skipping listing at index %d: missing id", i)
			continue
		}

		if err := exactAdapter.Index(ctx, v); err != nil {
			log.Printf("Failed to index %s in Typesense: %v", v.ID, err)
			failed++
			continue
		}

		embedding, err := embedder.Embed(ctx, embeddingText(v))
		if err != nil {
			log.Printf("Failed to embed %s: %v", v.ID, err)
			failed++
			continue
		}

		payload := map[string]string{
			"make":      v.Make,
			"model":     v.Model,
			"body_type": v.BodyType,
			"fuel_type": v.FuelType,
		}
		if err := qdrantClient.Upsert(ctx, v.ID, embedding, payload); err != nil {
			log.Printf("Failed to upsert %s in Qdrant: %v", v.ID, err)
			failed++
			continue
		}

		log.Printf("Indexed %s %s %s", v.ID, v.Make, v.Model)
	}

	if failed > 0 {
		return fmt.Errorf("indexing finished with %d failures", failed)
	}
	log.Println("Indexing complete.")
	return nil
}

func loadVehicles(path string) ([]entities.Vehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle listings: %w", err)
	}
	var vehicles []entities.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to parse vehicle listings: %w", err)
	}
	return vehicles, nil
}

// embeddingText flattens a listing into the prose the semantic index stores.
func embeddingText(v *entities.Vehicle) string {
	parts := []string{
		fmt.Sprintf("%d %s %s", v.FirstRegistration.Year(), v.Make, v.Model),
		v.BodyType,
		v.FuelType,
		v.Transmission,
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	if v.Description != "" {
		parts = append(parts, v.Description)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ". ")
}
