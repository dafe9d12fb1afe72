// Package config loads footagents settings with viper.
//
// Precedence, highest first: bound cobra flags, FOOTAGENTS_* environment
// variables (dots become underscores, so workflow.keep_last is
// FOOTAGENTS_WORKFLOW_KEEP_LAST), the config file, then Default().
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/amoghd24/footagents-ai-game/conversation"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "FOOTAGENTS"

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Trace     TraceConfig     `mapstructure:"trace"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type WorkflowConfig struct {
	Pipeline        string `mapstructure:"pipeline"`
	Threshold       int    `mapstructure:"threshold"`
	KeepLast        int    `mapstructure:"keep_last"`
	RetrievalPolicy string `mapstructure:"retrieval_policy"`
	MaxSteps        int    `mapstructure:"max_steps"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// LLMConfig selects the chat provider. The response and summary models
// may differ; both share the provider, key and base URL.
type LLMConfig struct {
	Provider            string      `mapstructure:"provider"`
	BaseURL             string      `mapstructure:"base_url"`
	APIKey              string      `mapstructure:"api_key"`
	ResponseModel       string      `mapstructure:"response_model"`
	ResponseTemperature float64     `mapstructure:"response_temperature"`
	SummaryModel        string      `mapstructure:"summary_model"`
	SummaryTemperature  float64     `mapstructure:"summary_temperature"`
	MaxTokens           int         `mapstructure:"max_tokens"`
	Retry               RetryConfig `mapstructure:"retry"`
}

type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type ChromaConfig struct {
	URL        string `mapstructure:"url"`
	Collection string `mapstructure:"collection"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	Collection string `mapstructure:"collection"`
}

type RetrievalConfig struct {
	Backend  string       `mapstructure:"backend"`
	TopK     int          `mapstructure:"top_k"`
	Embedder string       `mapstructure:"embedder"`
	Seed     bool         `mapstructure:"seed"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
	Chroma   ChromaConfig `mapstructure:"chroma"`
	Qdrant   QdrantConfig `mapstructure:"qdrant"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type StorageConfig struct {
	Backend string      `mapstructure:"backend"`
	DSN     string      `mapstructure:"dsn"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// TraceConfig enables the per-step engine state trace.
type TraceConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
	MaxRuns int    `mapstructure:"max_runs"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type EventsConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type TelemetryConfig struct {
	Tracing bool `mapstructure:"tracing"`
}

// Default returns the built-in configuration.
func Default() Config {
	wf := conversation.DefaultConfig()
	return Config{
		Log:    LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{Addr: ":8000", RequestTimeout: 60 * time.Second},
		Workflow: WorkflowConfig{
			Pipeline:        string(wf.Pipeline),
			Threshold:       wf.Threshold,
			KeepLast:        wf.KeepLast,
			RetrievalPolicy: string(wf.RetrievalPolicy),
			MaxSteps:        wf.MaxSteps,
		},
		LLM: LLMConfig{
			Provider:            "openai",
			BaseURL:             "https://api.groq.com/openai/v1/",
			ResponseModel:       "llama-3.3-70b-versatile",
			ResponseTemperature: 0.7,
			SummaryModel:        "llama-3.1-8b-instant",
			SummaryTemperature:  0.3,
			MaxTokens:           1024,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   500 * time.Millisecond,
				MaxDelay:    5 * time.Second,
			},
		},
		Retrieval: RetrievalConfig{
			Backend:  "memory",
			TopK:     5,
			Embedder: "hash",
			Seed:     true,
			Ollama:   OllamaConfig{URL: "http://localhost:11434", Model: "nomic-embed-text"},
			Chroma:   ChromaConfig{URL: "http://localhost:8000", Collection: "football_knowledge"},
			Qdrant:   QdrantConfig{Host: "localhost", Port: 6334, Collection: "football_knowledge"},
		},
		Storage: StorageConfig{
			Backend: "memory",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "footagents:"},
		},
		Trace:  TraceConfig{Backend: "none", MaxRuns: 100},
		Events: EventsConfig{Kafka: KafkaConfig{Topic: "footagents.turns"}},
	}
}

// SetDefaults registers Default() under dotted keys so env variables bind
// to every key and Unmarshal sees a value for each field.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)

	v.SetDefault("workflow.pipeline", d.Workflow.Pipeline)
	v.SetDefault("workflow.threshold", d.Workflow.Threshold)
	v.SetDefault("workflow.keep_last", d.Workflow.KeepLast)
	v.SetDefault("workflow.retrieval_policy", d.Workflow.RetrievalPolicy)
	v.SetDefault("workflow.max_steps", d.Workflow.MaxSteps)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.response_model", d.LLM.ResponseModel)
	v.SetDefault("llm.response_temperature", d.LLM.ResponseTemperature)
	v.SetDefault("llm.summary_model", d.LLM.SummaryModel)
	v.SetDefault("llm.summary_temperature", d.LLM.SummaryTemperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.retry.max_attempts", d.LLM.Retry.MaxAttempts)
	v.SetDefault("llm.retry.base_delay", d.LLM.Retry.BaseDelay)
	v.SetDefault("llm.retry.max_delay", d.LLM.Retry.MaxDelay)

	v.SetDefault("retrieval.backend", d.Retrieval.Backend)
	v.SetDefault("retrieval.top_k", d.Retrieval.TopK)
	v.SetDefault("retrieval.embedder", d.Retrieval.Embedder)
	v.SetDefault("retrieval.seed", d.Retrieval.Seed)
	v.SetDefault("retrieval.ollama.url", d.Retrieval.Ollama.URL)
	v.SetDefault("retrieval.ollama.model", d.Retrieval.Ollama.Model)
	v.SetDefault("retrieval.chroma.url", d.Retrieval.Chroma.URL)
	v.SetDefault("retrieval.chroma.collection", d.Retrieval.Chroma.Collection)
	v.SetDefault("retrieval.qdrant.host", d.Retrieval.Qdrant.Host)
	v.SetDefault("retrieval.qdrant.port", d.Retrieval.Qdrant.Port)
	v.SetDefault("retrieval.qdrant.api_key", d.Retrieval.Qdrant.APIKey)
	v.SetDefault("retrieval.qdrant.use_tls", d.Retrieval.Qdrant.UseTLS)
	v.SetDefault("retrieval.qdrant.collection", d.Retrieval.Qdrant.Collection)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.redis.addr", d.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", d.Storage.Redis.Password)
	v.SetDefault("storage.redis.db", d.Storage.Redis.DB)
	v.SetDefault("storage.redis.prefix", d.Storage.Redis.Prefix)
	v.SetDefault("storage.redis.ttl", d.Storage.Redis.TTL)

	v.SetDefault("trace.backend", d.Trace.Backend)
	v.SetDefault("trace.dsn", d.Trace.DSN)
	v.SetDefault("trace.max_runs", d.Trace.MaxRuns)

	v.SetDefault("events.kafka.brokers", d.Events.Kafka.Brokers)
	v.SetDefault("events.kafka.topic", d.Events.Kafka.Topic)

	v.SetDefault("telemetry.tracing", d.Telemetry.Tracing)
}

// InitViper returns a viper instance with defaults, the config file and
// environment binding in place. An empty configFile searches for
// footagents.yaml in the working directory and $HOME/.footagents; a
// missing file is not an error unless configFile names it explicitly.
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("footagents")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.footagents")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want one of %s)", key, value, strings.Join(allowed, ", "))
}

// Validate checks enumerations and backend requirements.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(oneOf("log.format", c.Log.Format, "console", "json"))
	add(oneOf("llm.provider", c.LLM.Provider, "openai", "anthropic", "google", "mock"))
	add(oneOf("retrieval.backend", c.Retrieval.Backend, "memory", "chroma", "qdrant", "none"))
	add(oneOf("retrieval.embedder", c.Retrieval.Embedder, "hash", "ollama"))
	add(oneOf("storage.backend", c.Storage.Backend, "memory", "sqlite", "mysql", "postgres", "redis"))
	add(oneOf("trace.backend", c.Trace.Backend, "none", "memory", "sqlite"))

	switch c.Storage.Backend {
	case "sqlite", "mysql", "postgres":
		if c.Storage.DSN == "" {
			add(fmt.Errorf("storage.dsn is required for the %s backend", c.Storage.Backend))
		}
	}
	if c.Trace.Backend == "sqlite" && c.Trace.DSN == "" {
		add(errors.New("trace.dsn is required for the sqlite trace backend"))
	}
	if c.Retrieval.Backend == "none" && c.Workflow.Pipeline == string(conversation.PipelineFull) {
		add(errors.New("retrieval.backend none requires workflow.pipeline simple"))
	}
	if c.LLM.Retry.MaxAttempts < 1 {
		add(errors.New("llm.retry.max_attempts must be at least 1"))
	}

	if _, err := c.Workflow.Conversation(); err != nil {
		add(err)
	}
	return errors.Join(errs...)
}

// Conversation converts the workflow section into a conversation.Config.
func (w WorkflowConfig) Conversation() (conversation.Config, error) {
	policy, err := conversation.ParseRetrievalPolicy(w.RetrievalPolicy)
	if err != nil {
		return conversation.Config{}, err
	}
	cfg := conversation.Config{
		Pipeline:        conversation.Pipeline(strings.ToLower(w.Pipeline)),
		Threshold:       w.Threshold,
		KeepLast:        w.KeepLast,
		RetrievalPolicy: policy,
		MaxSteps:        w.MaxSteps,
	}
	if err := cfg.Validate(); err != nil {
		return conversation.Config{}, err
	}
	return cfg, nil
}
