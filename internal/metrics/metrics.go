// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scripthook/scripthook/pkg/hook"
)

const namespace = "scripthook"

// Metrics holds the collectors for one host process. Each instance owns its
// registry so tests and embedded hosts do not collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	compiles        *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	registered      *prometheus.GaugeVec
	invocations     *prometheus.CounterVec
	hookDuration    *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "compiler",
				Name:      "files_total",
				Help:      "Script files compiled, by backend and result",
			},
			[]string{"backend", "result"},
		),
		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "compiler",
				Name:      "duration_seconds",
				Help:      "Time spent compiling one script file",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		registered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "hooks",
				Name:      "registered",
				Help:      "Hooks registered per scene and event",
			},
			[]string{"scene", "event"},
		),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hooks",
				Name:      "invocations_total",
				Help:      "Hook invocations, by scene, event and result",
			},
			[]string{"scene", "event", "result"},
		),
		hookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "hooks",
				Name:      "duration_seconds",
				Help:      "Duration of one hook invocation",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"scene", "event"},
		),
	}
	m.registry.MustRegister(m.compiles, m.compileDuration, m.registered, m.invocations, m.hookDuration)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// CompileObserved records one compiled file.
func (m *Metrics) CompileObserved(backend string, elapsed time.Duration, ok bool) {
	m.compiles.WithLabelValues(backend, result(ok)).Inc()
	m.compileDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// HookRegistered records one registration.
func (m *Metrics) HookRegistered(d hook.Descriptor) {
	m.registered.WithLabelValues(string(d.Scene), string(d.Event)).Inc()
}

// HookInvoked records one hook invocation.
func (m *Metrics) HookInvoked(d hook.Descriptor, _, _ string, elapsed time.Duration, err error) {
	scene, event := string(d.Scene), string(d.Event)
	m.invocations.WithLabelValues(scene, event, result(err == nil)).Inc()
	m.hookDuration.WithLabelValues(scene, event).Observe(elapsed.Seconds())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
