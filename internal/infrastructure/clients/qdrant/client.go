package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/velora/vehicle-discovery/pkg/config"
)

// Client is the sole owner of all Qdrant operations.
type Client struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewClient creates a Client connected to Qdrant at the configured gRPC address.
func NewClient(cfg *config.QdrantConfig) (*Client, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", cfg.Addr, err)
	}
	return &Client{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Collection returns the configured collection name.
func (c *Client) Collection() string {
	return c.collection
}

// EnsureCollection creates the collection if it doesn't exist.
func (c *Client) EnsureCollection(ctx context.Context, dims int) error {
	list, err := c.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, col := range list.GetCollections() {
		if col.GetName() == c.collection {
			return nil
		}
	}

	d := uint64(dims)
	_, err = c.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     d,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", c.collection, err)
	}
	return nil
}

// Upsert stores embedded vehicle descriptions. Called by the indexing path.
func (c *Client) Upsert(ctx context.Context, vehicleID string, embedding []float32, payload map[string]string) error {
	fields := make(map[string]*pb.Value, len(payload))
	for k, v := range payload {
		fields[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
	}

	wait := true
	_, err := c.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: c.collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: vehicleID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: embedding},
				},
			},
			Payload: fields,
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %s: %w", vehicleID, err)
	}
	return nil
}

// DeletePoint removes a vehicle's vector.
func (c *Client) DeletePoint(ctx context.Context, vehicleID string) error {
	wait := true
	_, err := c.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: c.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: vehicleID}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete %s: %w", vehicleID, err)
	}
	return nil
}

// Hit is one k-NN search hit.
type Hit struct {
	VehicleID string
	Score     float32
}

// Search performs k-NN similarity search over the collection.
func (c *Client) Search(ctx context.Context, embedding []float32, topK int) ([]Hit, error) {
	resp, err := c.points.Search(ctx, &pb.SearchPoints{
		CollectionName: c.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	hits := make([]Hit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		hits[i] = Hit{
			VehicleID: r.GetId().GetUuid(),
			Score:     r.GetScore(),
		}
	}
	return hits, nil
}
