// Package retrieval finds football knowledge relevant to a fan's message.
//
// A Retriever embeds the query with an Embedder and searches an Index.
// Indexes are pluggable: MemoryIndex for single-process use, and the
// chroma and qdrant subpackages for external vector databases.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/conversation"
)

var (
	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch is returned when vectors of different sizes meet.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// DefaultTopK is the number of snippets retrieved per query.
const DefaultTopK = 5

// Document is a knowledge snippet with its embedding.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a query result. Higher scores are more similar.
type Match struct {
	Document
	Score float32
}

// Embedder converts text into a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}

// Index stores embedded documents and answers nearest-neighbour queries.
type Index interface {
	// Add stores documents, replacing any with the same ID.
	Add(ctx context.Context, docs []Document) error

	// Query returns up to topK documents ordered by descending score.
	Query(ctx context.Context, embedding []float32, topK int) ([]Match, error)

	Close() error
}

// Retriever implements conversation.Retriever over an Embedder and Index.
type Retriever struct {
	embedder Embedder
	index    Index
	topK     int
	logger   *zap.Logger
}

var _ conversation.Retriever = (*Retriever)(nil)

// NewRetriever returns a Retriever. topK <= 0 selects DefaultTopK.
func NewRetriever(embedder Embedder, index Index, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, index: index, topK: topK, logger: logger}
}

// RetrieveContext returns the content of the closest documents, best first.
func (r *Retriever) RetrieveContext(ctx context.Context, query string) ([]string, error) {
	const op = "retrieval.RetrieveContext"

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, conversation.Wrap(conversation.KindRetrieval, op, err)
	}

	matches, err := r.index.Query(ctx, vec, r.topK)
	if err != nil {
		return nil, conversation.Wrap(conversation.KindRetrieval, op, err)
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Content == "" {
			continue
		}
		out = append(out, m.Content)
	}

	r.logger.Debug("retrieved context",
		zap.Int("matches", len(matches)),
		zap.Int("top_k", r.topK),
	)
	return out, nil
}

// Close releases the embedder and the index.
func (r *Retriever) Close() error {
	return errors.Join(r.embedder.Close(), r.index.Close())
}

// Seed embeds docs that carry no embedding yet and adds them to index.
func Seed(ctx context.Context, embedder Embedder, index Index, docs []Document) error {
	embedded := make([]Document, 0, len(docs))
	for _, d := range docs {
		if len(d.Embedding) == 0 {
			vec, err := embedder.Embed(ctx, d.Content)
			if err != nil {
				return fmt.Errorf("seed %s: %w", d.ID, err)
			}
			d.Embedding = vec
		}
		embedded = append(embedded, d)
	}
	return index.Add(ctx, embedded)
}
