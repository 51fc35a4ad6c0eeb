package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/velora/vehicle-discovery/internal/domain/repositories"
	qdrantclient "github.com/velora/vehicle-discovery/internal/infrastructure/clients/qdrant"
)

// QdrantAdapter implements semantic retrieval using Qdrant k-NN search.
type QdrantAdapter struct {
	client   *qdrantclient.Client
	embedder Embedder
	breaker  *gobreaker.CircuitBreaker
}

var _ repositories.SemanticSearchBackend = (*QdrantAdapter)(nil)

// NewQdrantAdapter creates a new Qdrant adapter
func NewQdrantAdapter(client *qdrantclient.Client, embedder Embedder) *QdrantAdapter {
	return &QdrantAdapter{
		client:   client,
		embedder: embedder,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "qdrant",
			Timeout: 10 * time.Second,
		}),
	}
}

// Query embeds the query text and returns similarity-ordered hits. Scores
// are cosine similarities on the 0..1 scale.
func (a *QdrantAdapter) Query(ctx context.Context, queryText string, limit int) ([]repositories.SemanticHit, error) {
	embedding, err := a.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	raw, err := a.breaker.Execute(func() (interface{}, error) {
		return a.client.Search(ctx, embedding, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	qhits := raw.([]qdrantclient.Hit)
	hits := make([]repositories.SemanticHit, len(qhits))
	for i, h := range qhits {
		score := float64(h.Score)
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		hits[i] = repositories.SemanticHit{
			VehicleID:  h.VehicleID,
			Similarity: score,
		}
	}
	return hits, nil
}
