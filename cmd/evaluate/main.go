package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/velora/vehicle-discovery/internal/adapters/providers/guardrail"
	"github.com/velora/vehicle-discovery/internal/adapters/providers/nlu"
	"github.com/velora/vehicle-discovery/internal/adapters/search"
	"github.com/velora/vehicle-discovery/internal/application/services"
	"github.com/velora/vehicle-discovery/internal/evaluation"
	qdrantclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/qdrant"
	typesenseclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/typesense"
	"github.com/velora/vehicle-discovery/pkg/config"
)

func main() {
	goldenPath := flag.String("queries", "config/golden_queries.json", "path to the golden query set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	tsClient, err := typesenseclient.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatalf("Failed to connect to Typesense: %v", err)
	}
	exactAdapter := search.NewTypesenseAdapter(tsClient)

	qdrantClient, err := qdrantclient.NewClient(&cfg.Qdrant)
	if err != nil {
		log.Fatalf("Failed to connect to Qdrant: %v", err)
	}
	defer qdrantClient.Close()

	var embedder search.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder, err = search.NewOpenAIEmbedder(&cfg.OpenAI)
		if err != nil {
			log.Fatalf("Failed to initialize embedder: %v", err)
		}
	} else {
		embedder = &search.MockEmbedder{Dims: cfg.Qdrant.VectorDims}
	}
	semanticAdapter := search.NewQdrantAdapter(qdrantClient, embedder)

	ruleNLU := nlu.NewRuleProvider()
	guardrails := guardrail.NewValidator(
		evaluation.NewGuardrails(evaluation.GuardrailConfig{}),
		guardrail.WithOffTopicClassifier(ruleNLU),
	)

	sessions := services.NewConversationContextService(cfg.Session.TTL, 0)
	defer sessions.Close()

	coordinator := services.NewSearchCoordinatorService(exactAdapter, semanticAdapter, services.CoordinatorConfig{
		BackendTimeout: cfg.Search.BackendTimeout,
		OverallTimeout: cfg.Search.OverallTimeout,
		RetryBackoff:   cfg.Search.RetryBackoff,
	})

	searchService := services.NewSearchService(
		guardrails,
		ruleNLU,
		services.NewAttributeMapper(),
		sessions,
		services.NewQueryComposerService(),
		services.NewStrategySelectorService(),
		coordinator,
	).WithVehicleReader(exactAdapter)

	path := *goldenPath
	if _, err := os.Stat(path); err != nil {
		log.Fatalf("Golden queries not found at %s: %v", path, err)
	}
	queries, err := evaluation.LoadGoldenQueries(path)
	if err != nil {
		log.Fatalf("Failed to load golden queries: %v", err)
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatalf("Invalid golden queries: %v", err)
	}

	runner := evaluation.NewRunner(searchService)
	summary, err := runner.Run(ctx, queries)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
