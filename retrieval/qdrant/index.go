// Package qdrant stores football knowledge in a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/retrieval"
)

// DefaultCollectionName is the collection used when none is configured.
const DefaultCollectionName = "football_knowledge"

// DefaultPort is Qdrant's gRPC port.
const DefaultPort = 6334

// Payload keys written with every point.
const (
	payloadDocID   = "doc_id"
	payloadContent = "content"
)

// Config holds the Qdrant connection settings.
type Config struct {
	Host           string
	Port           int
	APIKey         string
	UseTLS         bool
	CollectionName string
}

// client is the subset of *qdrant.Client the index uses.
type client interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Index implements retrieval.Index on a Qdrant collection. The collection
// is created on first Add, sized to the first document's embedding.
type Index struct {
	client     client
	collection string
	logger     *zap.Logger

	mu    sync.Mutex
	ready bool
}

var _ retrieval.Index = (*Index)(nil)

// NewIndex dials Qdrant. No RPC is made until the index is used.
func NewIndex(cfg Config, logger *zap.Logger) (*Index, error) {
	if cfg.Host == "" {
		return nil, errors.New("qdrant host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}
	return newIndex(c, cfg.CollectionName, logger), nil
}

func newIndex(c client, collection string, logger *zap.Logger) *Index {
	if collection == "" {
		collection = DefaultCollectionName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{client: c, collection: collection, logger: logger}
}

func (i *Index) ensureCollection(ctx context.Context, dim int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ready {
		return nil
	}

	exists, err := i.client.CollectionExists(ctx, i.collection)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", i.collection, err)
	}
	if !exists {
		err := i.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: i.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dim),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", i.collection, err)
		}
		i.logger.Info("created qdrant collection",
			zap.String("collection", i.collection),
			zap.Int("dimension", dim),
		)
	}
	i.ready = true
	return nil
}

// Add implements retrieval.Index. Point IDs are derived from document IDs,
// so re-adding a document overwrites it.
func (i *Index) Add(ctx context.Context, docs []retrieval.Document) error {
	if len(docs) == 0 {
		return nil
	}

	dim := len(docs[0].Embedding)
	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return errors.New("qdrant index: document id is required")
		}
		if len(d.Embedding) != dim || dim == 0 {
			return fmt.Errorf("%w: document %s", retrieval.ErrDimensionMismatch, d.ID)
		}

		payload := map[string]any{
			payloadDocID:   d.ID,
			payloadContent: d.Content,
		}
		for k, v := range d.Metadata {
			payload[k] = v
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(d.ID)),
			Vectors: qdrant.NewVectors(d.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	if err := i.ensureCollection(ctx, dim); err != nil {
		return err
	}

	if _, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	i.logger.Debug("added documents to qdrant", zap.Int("count", len(points)))
	return nil
}

// Query implements retrieval.Index.
func (i *Index) Query(ctx context.Context, embedding []float32, topK int) ([]retrieval.Match, error) {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	matches := make([]retrieval.Match, 0, len(points))
	for _, p := range points {
		m := retrieval.Match{Score: p.GetScore()}
		for k, v := range p.GetPayload() {
			switch k {
			case payloadDocID:
				m.ID = v.GetStringValue()
			case payloadContent:
				m.Content = v.GetStringValue()
			default:
				if m.Metadata == nil {
					m.Metadata = make(map[string]string)
				}
				m.Metadata[k] = v.GetStringValue()
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Close implements retrieval.Index.
func (i *Index) Close() error {
	return i.client.Close()
}

// pointID maps a document ID to a stable UUID, since Qdrant only accepts
// UUIDs or unsigned integers.
func pointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("footagents:"+docID)).String()
}
