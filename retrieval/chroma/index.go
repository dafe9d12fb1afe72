// Package chroma stores football knowledge in a Chroma collection over
// Chroma's v2 REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/retrieval"
)

// DefaultCollectionName is the collection used when none is configured.
const DefaultCollectionName = "football_knowledge"

const collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"

// Config holds the Chroma connection settings.
type Config struct {
	// URL is the Chroma server URL, e.g. "http://localhost:8000".
	URL string

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// Index implements retrieval.Index on a Chroma collection.
type Index struct {
	baseURL      string
	collection   string
	collectionID string
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ retrieval.Index = (*Index)(nil)

// NewIndex connects to Chroma and gets or creates the collection.
func NewIndex(ctx context.Context, cfg Config, logger *zap.Logger) (*Index, error) {
	if cfg.URL == "" {
		return nil, errors.New("chroma URL is required")
	}
	if cfg.CollectionName == "" {
		cfg.CollectionName = DefaultCollectionName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.CollectionName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}

	id, err := idx.getOrCreateCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting or creating collection %q: %w", cfg.CollectionName, err)
	}
	idx.collectionID = id

	logger.Info("connected to chroma",
		zap.String("url", idx.baseURL),
		zap.String("collection", idx.collection),
		zap.String("collection_id", id),
	)
	return idx, nil
}

func (i *Index) getOrCreateCollection(ctx context.Context) (string, error) {
	var c collection
	status, err := i.do(ctx, http.MethodGet, collectionsPath+"/"+i.collection, nil, &c)
	if err == nil {
		return c.ID, nil
	}
	if status != http.StatusNotFound && status != 0 {
		i.logger.Debug("collection lookup failed, creating", zap.Int("status", status))
	}

	if _, err := i.do(ctx, http.MethodPost, collectionsPath, createRequest{
		Name:        i.collection,
		GetOrCreate: true,
		Metadata:    map[string]any{"hnsw:space": "cosine"},
	}, &c); err != nil {
		return "", err
	}
	return c.ID, nil
}

// Add implements retrieval.Index. Chroma's upsert replaces existing IDs.
func (i *Index) Add(ctx context.Context, docs []retrieval.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := upsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for n, d := range docs {
		req.IDs[n] = d.ID
		req.Embeddings[n] = d.Embedding
		req.Documents[n] = d.Content
		meta := make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			meta[k] = v
		}
		req.Metadatas[n] = meta
	}

	if _, err := i.do(ctx, http.MethodPost, i.collectionPath("upsert"), req, nil); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	i.logger.Debug("added documents to chroma", zap.Int("count", len(docs)))
	return nil
}

// Query implements retrieval.Index. Distances are mapped to 1/(1+d).
func (i *Index) Query(ctx context.Context, embedding []float32, topK int) ([]retrieval.Match, error) {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}

	var resp queryResponse
	if _, err := i.do(ctx, http.MethodPost, i.collectionPath("query"), queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"documents", "metadatas", "distances"},
	}, &resp); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	if len(resp.IDs) == 0 || len(resp.IDs[0]) == 0 {
		return nil, nil
	}

	ids := resp.IDs[0]
	var (
		documents []string
		metadatas []map[string]any
		distances []float32
	)
	if len(resp.Documents) > 0 {
		documents = resp.Documents[0]
	}
	if len(resp.Metadatas) > 0 {
		metadatas = resp.Metadatas[0]
	}
	if len(resp.Distances) > 0 {
		distances = resp.Distances[0]
	}

	matches := make([]retrieval.Match, 0, len(ids))
	for n, id := range ids {
		m := retrieval.Match{Document: retrieval.Document{ID: id}}
		if n < len(documents) {
			m.Content = documents[n]
		}
		if n < len(metadatas) && len(metadatas[n]) > 0 {
			m.Metadata = make(map[string]string, len(metadatas[n]))
			for k, v := range metadatas[n] {
				if s, ok := v.(string); ok {
					m.Metadata[k] = s
				}
			}
		}
		if n < len(distances) {
			m.Score = 1 / (1 + distances[n])
		}
		matches = append(matches, m)
	}

	i.logger.Debug("queried chroma", zap.Int("results", len(matches)))
	return matches, nil
}

// Close implements retrieval.Index.
func (i *Index) Close() error {
	i.httpClient.CloseIdleConnections()
	return nil
}

func (i *Index) collectionPath(action string) string {
	return collectionsPath + "/" + i.collectionID + "/" + action
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. The returned status is 0 when no response was received.
func (i *Index) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
