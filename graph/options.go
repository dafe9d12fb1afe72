package graph

// Option configures an Engine at construction time.
//
// Options are applied in order by New. An option that returns an error
// leaves the engine unusable: Validate and Run report the error.
//
// Example:
//
//	engine := graph.New(reduce, nil, emitter,
//	    graph.WithMaxSteps(20),
//	    graph.WithMetrics(metrics),
//	)
type Option func(*engineConfig) error

type engineConfig struct {
	opts Options
}

// Options configures Engine execution behavior.
//
// Zero values are valid - the Engine will use sensible defaults.
type Options struct {
	// MaxSteps limits workflow execution as a backstop against routing
	// mistakes. If 0, no limit is enforced beyond the no-revisit rule.
	MaxSteps int

	// Metrics receives per-node latency, error and routing observations.
	// Nil disables metrics.
	Metrics *PrometheusMetrics

	// GraphID labels metrics and events so several workflows can share
	// one registry.
	GraphID string
}

// WithMaxSteps sets the maximum number of node executions per run.
func WithMaxSteps(n int) Option {
	return func(cfg *engineConfig) error {
		if n < 0 {
			return &EngineError{
				Message: "max steps cannot be negative",
				Code:    "INVALID_OPTION",
			}
		}
		cfg.opts.MaxSteps = n
		return nil
	}
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(cfg *engineConfig) error {
		cfg.opts.Metrics = metrics
		return nil
	}
}

// WithGraphID names the workflow for metrics and events.
func WithGraphID(id string) Option {
	return func(cfg *engineConfig) error {
		cfg.opts.GraphID = id
		return nil
	}
}
