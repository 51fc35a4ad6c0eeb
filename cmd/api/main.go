package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/velora/vehicle-discovery/internal/adapters/cache"
	"github.com/velora/vehicle-discovery/internal/adapters/events"
	"github.com/velora/vehicle-discovery/internal/adapters/providers/guardrail"
	"github.com/velora/vehicle-discovery/internal/adapters/providers/nlu"
	"github.com/velora/vehicle-discovery/internal/adapters/search"
	"github.com/velora/vehicle-discovery/internal/api/handlers"
	"github.com/velora/vehicle-discovery/internal/api/routes"
	"github.com/velora/vehicle-discovery/internal/application/services"
	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/evaluation"
	qdrantclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/qdrant"
	redisclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/redis"
	typesenseclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/typesense"
	"github.com/velora/vehicle-discovery/internal/infrastructure/observability"
	"github.com/velora/vehicle-discovery/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; the service runs without an exporter.
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				if err := shutdown(sctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Redis backs the NLU cache and the analytics event bus. The service
	// degrades gracefully when it is unavailable.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without cache and events")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
		log.Info().Msg("redis client initialized")
	}

	typesenseClient, err := typesenseclient.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize typesense client")
	}
	if err := typesenseClient.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to init typesense schema")
	}
	exactAdapter := search.NewTypesenseAdapter(typesenseClient)

	qdrantClient, err := qdrantclient.NewClient(&cfg.Qdrant)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize qdrant client")
	}
	defer qdrantClient.Close()
	if err := qdrantClient.EnsureCollection(ctx, cfg.Qdrant.VectorDims); err != nil {
		log.Warn().Err(err).Msg("failed to ensure qdrant collection")
	}

	var embedder search.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder, err = search.NewOpenAIEmbedder(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize embedder")
		}
	} else {
		log.Warn().Msg("no OpenAI key configured, using deterministic mock embedder")
		embedder = &search.MockEmbedder{Dims: cfg.Qdrant.VectorDims}
	}
	semanticAdapter := search.NewQdrantAdapter(qdrantClient, embedder)

	// The rule provider always runs locally: it backs the guardrail
	// off-topic check, and serves as the pipeline NLU when no key is set.
	ruleNLU := nlu.NewRuleProvider()
	if cacheProvider != nil {
		ruleNLU.SetCache(cacheProvider)
	}

	var nluProvider providers.NLUProvider = ruleNLU
	if cfg.OpenAI.APIKey != "" {
		nluProvider, err = nlu.NewOpenAIProvider(&cfg.OpenAI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize NLU provider")
		}
	}

	guardrails := guardrail.NewValidator(
		evaluation.NewGuardrails(evaluation.GuardrailConfig{}),
		guardrail.WithOffTopicClassifier(ruleNLU),
	)

	sessions := services.NewConversationContextService(cfg.Session.TTL, cfg.Session.SweepInterval)
	defer sessions.Close()

	coordinator := services.NewSearchCoordinatorService(exactAdapter, semanticAdapter, services.CoordinatorConfig{
		BackendTimeout: cfg.Search.BackendTimeout,
		OverallTimeout: cfg.Search.OverallTimeout,
		RetryBackoff:   cfg.Search.RetryBackoff,
	})

	searchService := services.NewSearchService(
		guardrails,
		nluProvider,
		services.NewAttributeMapper(),
		sessions,
		services.NewQueryComposerService(),
		services.NewStrategySelectorService(),
		coordinator,
	).WithVehicleReader(exactAdapter).WithMetrics(metrics)
	if eventBus != nil {
		searchService = searchService.WithEventBus(eventBus)
	}

	searchHandler := handlers.NewSearchHandler(searchService)
	router := routes.NewRouter(searchHandler, metrics)
	if eventBus != nil {
		router = router.WithSSEHandler(handlers.NewSSEHandler(eventBus))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
