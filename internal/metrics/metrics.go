package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ssg"

// Build records generator activity on its own registry so tests and the
// preview server never share global state.
type Build struct {
	registry *prometheus.Registry

	itemsRendered *prometheus.CounterVec
	itemsFailed   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	commands      *prometheus.CounterVec
}

// NewBuild creates the collectors and registers them on a fresh registry.
func NewBuild() *Build {
	m := &Build{
		registry: prometheus.NewRegistry(),
		itemsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "items_rendered_total", Help: "Number of outputs rendered by content kind."},
			[]string{"kind"},
		),
		itemsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "items_failed_total", Help: "Number of outputs that failed by content kind."},
			[]string{"kind"},
		),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of full site builds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "commands_total", Help: "Number of CLI commands executed by operation and outcome."},
			[]string{"operation", "status"},
		),
	}
	m.registry.MustRegister(m.itemsRendered, m.itemsFailed, m.buildDuration, m.commands)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Build) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Build) ItemRendered(kind string) {
	m.itemsRendered.WithLabelValues(kind).Inc()
}

func (m *Build) ItemFailed(kind string) {
	m.itemsFailed.WithLabelValues(kind).Inc()
}

func (m *Build) BuildCompleted(d time.Duration) {
	m.buildDuration.Observe(d.Seconds())
}

// CommandCompleted counts a command outcome. status is one of the
// commands.TelemetryStatus values.
func (m *Build) CommandCompleted(operation, status string) {
	m.commands.WithLabelValues(operation, status).Inc()
}
