// Package qdrant provides a Qdrant-backed vector driver over gRPC.
package qdrant

import (
	"context"
	"fmt"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/vector"
)

const (
	// DefaultCollection is the default Qdrant collection name.
	DefaultCollection = "groundwork_passages"

	payloadKeyText   = "text"
	payloadKeySource = "source"
)

// Driver implements vector.Driver using a Qdrant collection.
type Driver struct {
	client     *qdrantclient.Client
	collection string
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant gRPC host.
	Host string

	// Port is the Qdrant gRPC port (typically 6334).
	Port int

	// Collection is the collection name. Defaults to DefaultCollection.
	Collection string

	// Dimensions is the embedding dimensionality, used when the collection
	// has to be created.
	Dimensions uint64
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, cfg Config, logger *zap.Logger) (*Driver, error) {
	if cfg.Dimensions == 0 {
		return nil, fmt.Errorf("%w: embedding dimensions must be configured", vector.ErrConnection)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qdrantclient.NewClient(&qdrantclient.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection: %v", vector.ErrConnection, err)
	}

	if !exists {
		err = client.CreateCollection(ctx, &qdrantclient.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrantclient.NewVectorsConfig(&qdrantclient.VectorParams{
				Size:     cfg.Dimensions,
				Distance: qdrantclient.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: creating collection: %v", vector.ErrConnection, err)
		}
	}

	logger.Info("qdrant vector driver initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("collection", collection),
		zap.Uint64("dimensions", cfg.Dimensions),
	)

	return &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// Add upserts documents into the collection.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrantclient.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &qdrantclient.PointStruct{
			Id:      qdrantclient.NewIDUUID(doc.ID),
			Vectors: qdrantclient.NewVectors(doc.Embedding...),
			Payload: qdrantclient.NewValueMap(map[string]any{
				payloadKeyText:   doc.Text,
				payloadKeySource: doc.Source,
			}),
		})
	}

	_, err := d.client.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Query returns the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	scored, err := d.client.Query(ctx, &qdrantclient.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrantclient.NewQuery(embedding...),
		Limit:          qdrantclient.PtrOf(uint64(topK)),
		WithPayload:    qdrantclient.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(scored))
	for _, point := range scored {
		result := vector.QueryResult{
			Document: vector.Document{
				ID: point.GetId().GetUuid(),
			},
			Score: point.GetScore(),
		}

		payload := point.GetPayload()
		if v, ok := payload[payloadKeyText]; ok {
			result.Text = v.GetStringValue()
		}
		if v, ok := payload[payloadKeySource]; ok {
			result.Source = v.GetStringValue()
		}

		results = append(results, result)
	}

	return results, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrantclient.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrantclient.NewIDUUID(id))
	}

	_, err := d.client.Delete(ctx, &qdrantclient.DeletePoints{
		CollectionName: d.collection,
		Points:         qdrantclient.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	return nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
