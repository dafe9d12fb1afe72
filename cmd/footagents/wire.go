package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/character"
	"github.com/amoghd24/footagents-ai-game/conversation"
	"github.com/amoghd24/footagents-ai-game/eventstream"
	"github.com/amoghd24/footagents-ai-game/eventstream/kafka"
	"github.com/amoghd24/footagents-ai-game/eventstream/nop"
	"github.com/amoghd24/footagents-ai-game/graph"
	"github.com/amoghd24/footagents-ai-game/graph/emit"
	"github.com/amoghd24/footagents-ai-game/graph/model"
	anthropicmodel "github.com/amoghd24/footagents-ai-game/graph/model/anthropic"
	googlemodel "github.com/amoghd24/footagents-ai-game/graph/model/google"
	openaimodel "github.com/amoghd24/footagents-ai-game/graph/model/openai"
	"github.com/amoghd24/footagents-ai-game/graph/store"
	"github.com/amoghd24/footagents-ai-game/internal/config"
	"github.com/amoghd24/footagents-ai-game/retrieval"
	"github.com/amoghd24/footagents-ai-game/retrieval/chroma"
	"github.com/amoghd24/footagents-ai-game/retrieval/ollama"
	"github.com/amoghd24/footagents-ai-game/retrieval/qdrant"
	"github.com/amoghd24/footagents-ai-game/storage"
	"github.com/amoghd24/footagents-ai-game/storage/memory"
	"github.com/amoghd24/footagents-ai-game/storage/mysql"
	"github.com/amoghd24/footagents-ai-game/storage/postgres"
	redisstore "github.com/amoghd24/footagents-ai-game/storage/redis"
	"github.com/amoghd24/footagents-ai-game/storage/sqlite"
)

// app holds every constructed dependency of a command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *character.Catalog
	store     storage.Store
	retriever *retrieval.Retriever
	events    *emit.BufferedEmitter
	registry  *prometheus.Registry
	service   *conversation.Service

	closers []func() error
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases dependencies in reverse construction order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// newApp builds the conversation service and everything it needs from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		catalog:  character.NewCatalog(),
		events:   emit.NewBufferedEmitter(cfg.Trace.MaxRuns),
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	responseModel, summaryModel, err := a.chatModels(ctx)
	if err != nil {
		return nil, err
	}

	if a.store, err = a.openStorage(ctx); err != nil {
		return nil, err
	}
	a.onClose(a.store.Close)

	if a.retriever, err = a.openRetriever(ctx); err != nil {
		return nil, err
	}

	trace, err := a.openTrace()
	if err != nil {
		return nil, err
	}

	emitter, err := a.emitter()
	if err != nil {
		return nil, err
	}

	wfCfg, err := cfg.Workflow.Conversation()
	if err != nil {
		return nil, err
	}
	deps := conversation.Deps{
		Generator: conversation.NewModelGenerator(responseModel, summaryModel, logger),
		Logger:    logger,
		Emitter:   emitter,
		Trace:     trace,
		Metrics:   graph.NewPrometheusMetrics(a.registry),
	}
	if a.retriever != nil {
		deps.Retriever = a.retriever
	}
	wf, err := conversation.NewWorkflow(wfCfg, deps)
	if err != nil {
		return nil, err
	}

	publisher, err := a.publisher()
	if err != nil {
		return nil, err
	}

	a.service, err = conversation.NewService(conversation.ServiceDeps{
		Characters: a.catalog,
		Repository: a.store,
		Workflow:   wf,
		Publisher:  publisher,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// chatModels returns the response and summary models, each wrapped with
// the configured retry policy.
func (a *app) chatModels(ctx context.Context) (model.ChatModel, model.ChatModel, error) {
	llm := a.cfg.LLM
	build := func(name string, temperature float64) (model.ChatModel, error) {
		switch llm.Provider {
		case "openai":
			return openaimodel.NewChatModel(openaimodel.Config{
				APIKey:      llm.APIKey,
				BaseURL:     llm.BaseURL,
				Model:       name,
				Temperature: temperature,
				MaxTokens:   int64(llm.MaxTokens),
			})
		case "anthropic":
			return anthropicmodel.NewChatModel(anthropicmodel.Config{
				APIKey:      llm.APIKey,
				Model:       name,
				Temperature: temperature,
				MaxTokens:   int64(llm.MaxTokens),
			})
		case "google":
			m, err := googlemodel.NewChatModel(ctx, googlemodel.Config{
				APIKey:      llm.APIKey,
				Model:       name,
				Temperature: temperature,
				MaxTokens:   int32(llm.MaxTokens),
			})
			if err != nil {
				return nil, err
			}
			a.onClose(m.Close)
			return m, nil
		case "mock":
			return offlineModel(), nil
		}
		return nil, fmt.Errorf("unknown llm provider %q", llm.Provider)
	}

	policy := model.RetryPolicy{
		MaxAttempts: llm.Retry.MaxAttempts,
		BaseDelay:   llm.Retry.BaseDelay,
		MaxDelay:    llm.Retry.MaxDelay,
	}

	var out [2]model.ChatModel
	for i, mc := range []struct {
		name        string
		temperature float64
	}{
		{llm.ResponseModel, llm.ResponseTemperature},
		{llm.SummaryModel, llm.SummaryTemperature},
	} {
		m, err := build(mc.name, mc.temperature)
		if err != nil {
			return nil, nil, fmt.Errorf("llm %s: %w", mc.name, err)
		}
		if out[i], err = model.WithRetry(m, policy); err != nil {
			return nil, nil, fmt.Errorf("llm retry policy: %w", err)
		}
	}

	a.logger.Info("llm configured",
		zap.String("provider", llm.Provider),
		zap.String("response_model", llm.ResponseModel),
		zap.String("summary_model", llm.SummaryModel),
	)
	return out[0], out[1], nil
}

// offlineModel answers without a provider. Single-message requests are
// summary prompts; everything else gets an in-character reply.
func offlineModel() *model.MockChatModel {
	return &model.MockChatModel{Handler: func(msgs []model.Message) (model.ChatOut, error) {
		if len(msgs) == 1 {
			return model.ChatOut{Text: "The fan and the legend talked football, training and the love of the game."}, nil
		}
		last := msgs[len(msgs)-1].Content
		name := "a football legend"
		if sys, _ := model.SplitSystem(msgs); sys != "" {
			if rest, ok := strings.CutPrefix(sys, "You are "); ok {
				if i := strings.Index(rest, ","); i > 0 {
					name = rest[:i]
				}
			}
		}
		return model.ChatOut{Text: fmt.Sprintf("As %s, I love that question: %q. Keep believing and keep playing.", name, last)}, nil
	}}
}

func (a *app) openStorage(ctx context.Context) (storage.Store, error) {
	sc := a.cfg.Storage
	a.logger.Info("opening storage", zap.String("backend", sc.Backend))

	switch sc.Backend {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(ctx, sc.DSN)
	case "mysql":
		return mysql.Open(ctx, sc.DSN)
	case "postgres":
		return postgres.Open(ctx, sc.DSN)
	case "redis":
		s := redisstore.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB,
			redisstore.WithPrefix(sc.Redis.Prefix),
			redisstore.WithTTL(sc.Redis.TTL),
		)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
}

func (a *app) openEmbedder() retrieval.Embedder {
	rc := a.cfg.Retrieval
	if rc.Embedder == "ollama" {
		return ollama.NewEmbedder(ollama.Config{BaseURL: rc.Ollama.URL, Model: rc.Ollama.Model})
	}
	return retrieval.NewHashEmbedder(0)
}

func (a *app) openIndex(ctx context.Context) (retrieval.Index, error) {
	rc := a.cfg.Retrieval
	switch rc.Backend {
	case "memory":
		return retrieval.NewMemoryIndex(), nil
	case "chroma":
		return chroma.NewIndex(ctx, chroma.Config{URL: rc.Chroma.URL, CollectionName: rc.Chroma.Collection}, a.logger)
	case "qdrant":
		return qdrant.NewIndex(qdrant.Config{
			Host:           rc.Qdrant.Host,
			Port:           rc.Qdrant.Port,
			APIKey:         rc.Qdrant.APIKey,
			UseTLS:         rc.Qdrant.UseTLS,
			CollectionName: rc.Qdrant.Collection,
		}, a.logger)
	}
	return nil, fmt.Errorf("unknown retrieval backend %q", rc.Backend)
}

// openKnowledge opens the configured embedder and index.
func (a *app) openKnowledge(ctx context.Context) (retrieval.Embedder, retrieval.Index, error) {
	idx, err := a.openIndex(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s index: %w", a.cfg.Retrieval.Backend, err)
	}
	return a.openEmbedder(), idx, nil
}

// openRetriever returns nil when retrieval is disabled.
func (a *app) openRetriever(ctx context.Context) (*retrieval.Retriever, error) {
	rc := a.cfg.Retrieval
	if rc.Backend == "none" {
		return nil, nil
	}

	emb, idx, err := a.openKnowledge(ctx)
	if err != nil {
		return nil, err
	}
	r := retrieval.NewRetriever(emb, idx, rc.TopK, a.logger)
	a.onClose(r.Close)

	if rc.Seed {
		if _, err := a.seed(ctx, emb, idx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// seed loads the built-in knowledge documents and returns how many were added.
func (a *app) seed(ctx context.Context, emb retrieval.Embedder, idx retrieval.Index) (int, error) {
	docs := retrieval.SeedDocuments()
	if err := retrieval.Seed(ctx, emb, idx, docs); err != nil {
		return 0, fmt.Errorf("seeding knowledge: %w", err)
	}
	a.logger.Info("seeded knowledge base", zap.Int("documents", len(docs)))
	return len(docs), nil
}

func (a *app) openTrace() (store.Store[conversation.State], error) {
	tc := a.cfg.Trace
	switch tc.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return store.NewMemStore[conversation.State](tc.MaxRuns), nil
	case "sqlite":
		s, err := store.NewSQLiteStore[conversation.State](tc.DSN)
		if err != nil {
			return nil, err
		}
		a.onClose(s.Close)
		return s, nil
	}
	return nil, fmt.Errorf("unknown trace backend %q", tc.Backend)
}

func (a *app) emitter() (emit.Emitter, error) {
	emitters := []emit.Emitter{emit.NewLogEmitter(a.logger), a.events}

	if a.cfg.Telemetry.Tracing {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		a.onClose(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return tp.Shutdown(ctx)
		})
		emitters = append(emitters, emit.NewOTelEmitter(tp.Tracer("footagents")))
	}
	return emit.NewMultiEmitter(emitters...), nil
}

func (a *app) publisher() (eventstream.Publisher, error) {
	kc := a.cfg.Events.Kafka
	if len(kc.Brokers) == 0 {
		return nop.NewPublisher(), nil
	}
	p, err := kafka.NewPublisher(kafka.Config{Brokers: kc.Brokers, Topic: kc.Topic, WriteTimeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	a.onClose(p.Close)
	a.logger.Info("publishing turn events", zap.Strings("brokers", kc.Brokers), zap.String("topic", kc.Topic))
	return p, nil
}
