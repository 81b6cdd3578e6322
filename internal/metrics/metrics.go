// Package metrics holds the daemon's Prometheus collectors. All recording
// methods are safe on a nil *Metrics so components can run without them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unitylens"

// Metrics owns a private registry so tests and multiple daemons in one
// process never collide on the default registerer.
type Metrics struct {
	registry *prometheus.Registry

	sidecarOps       *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	assetScans       *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	trackedAssets    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		sidecarOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sidecar_operations_total",
			Help:      "Meta sidecar operations by kind and outcome.",
		}, []string{"op", "result"}),
		providerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Lens, hover and command requests by feature.",
		}, []string{"feature"}),
		assetScans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_scans_total",
			Help:      "Scene, prefab and asset files visited by refresh, by cache result.",
		}, []string{"cache"}),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_refresh_duration_seconds",
			Help:      "Wall time of a full asset index refresh.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		trackedAssets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_assets",
			Help:      "Serialized assets currently in the index.",
		}),
	}
}

// SidecarOp counts one sidecar operation.
func (m *Metrics) SidecarOp(op, result string) {
	if m == nil {
		return
	}
	m.sidecarOps.WithLabelValues(op, result).Inc()
}

// ProviderRequest counts one request served by a feature.
func (m *Metrics) ProviderRequest(feature string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(feature).Inc()
}

// AssetScan counts one visited asset; cache is "hit", "rehash", "skip"
// (no markers) or "miss".
func (m *Metrics) AssetScan(cache string) {
	if m == nil {
		return
	}
	m.assetScans.WithLabelValues(cache).Inc()
}

// AssetRefresh records a completed refresh.
func (m *Metrics) AssetRefresh(d time.Duration, tracked int) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
	m.trackedAssets.Set(float64(tracked))
}

// Registry exposes the registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
