// Package metrics exports Prometheus metrics for vdom engines.
//
// A Collector is a vdom.Observer: register it with vdom.WithObserver to
// record pass counts, durations, mutation volume and component churn. Wrap a
// render target with Instrument to also count individual target calls and
// their failures.
//
// Metrics collected:
//   - vdom_passes_total: Counter of passes by kind and status
//   - vdom_pass_duration_seconds: Histogram of pass duration by kind
//   - vdom_mutations_total: Counter of target mutations by type
//   - vdom_components_total: Counter of component lifecycle events
//   - vdom_components_mounted: Gauge of mounted components
//   - vdom_target_calls_total: Counter of target calls by op (Instrument)
//   - vdom_target_errors_total: Counter of failed target calls by op (Instrument)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vdom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vdom",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records engine metrics.
type Collector struct {
	passesTotal     *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	mutationsTotal  *prometheus.CounterVec
	componentsTotal *prometheus.CounterVec
	mounted         prometheus.Gauge
	targetCalls     *prometheus.CounterVec
	targetErrors    *prometheus.CounterVec
}

// New creates a Collector and registers its metrics. Registering two
// collectors with the same namespace on one registry panics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of render passes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		passDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of render target mutations by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		componentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "components_total",
			Help:        "Total component lifecycle events",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		mounted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "components_mounted",
			Help:        "Number of mounted components",
			ConstLabels: config.ConstLabels,
		}),

		targetCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "target_calls_total",
			Help:        "Total render target calls by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		targetErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "target_errors_total",
			Help:        "Total failed render target calls by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),
	}
}

// PassCompleted implements vdom.Observer.
func (c *Collector) PassCompleted(kind string, duration time.Duration, stats vdom.PassStats, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.passesTotal.WithLabelValues(kind, status).Inc()
	c.passDuration.WithLabelValues(kind).Observe(duration.Seconds())

	for _, m := range []struct {
		label string
		n     int
	}{
		{"create", stats.Created},
		{"insert", stats.Inserted},
		{"remove", stats.Removed},
		{"move", stats.Moved},
		{"text", stats.TextUpdates},
		{"attr", stats.AttrUpdates},
		{"listener_add", stats.ListenersAdded},
		{"listener_remove", stats.ListenersRemoved},
	} {
		if m.n > 0 {
			c.mutationsTotal.WithLabelValues(m.label).Add(float64(m.n))
		}
	}

	if stats.ComponentsCreated > 0 {
		c.componentsTotal.WithLabelValues("created").Add(float64(stats.ComponentsCreated))
	}
	if stats.ComponentsUpdated > 0 {
		c.componentsTotal.WithLabelValues("updated").Add(float64(stats.ComponentsUpdated))
	}
	if stats.ComponentsDestroyed > 0 {
		c.componentsTotal.WithLabelValues("destroyed").Add(float64(stats.ComponentsDestroyed))
	}
	c.mounted.Add(float64(stats.ComponentsCreated - stats.ComponentsDestroyed))
}

var _ vdom.Observer = (*Collector)(nil)
