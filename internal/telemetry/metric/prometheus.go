package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "playgate"

// Registry holds all application metrics on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	AuthResults         *prometheus.CounterVec
	StorageState        prometheus.Gauge
	RealtimeConnections prometheus.Gauge
}

// NewRegistry creates a registry with the Go and process collectors and
// all playgate metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, dispatch stage and status code",
		}, []string{"method", "stage", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and dispatch stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "stage"}),
		AuthResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "verifications_total",
			Help:      "Credential verifications by result",
		}, []string{"result"}),
		StorageState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "state",
			Help:      "Storage connection state (0=disconnected 1=connecting 2=connected 3=errored)",
		}),
		RealtimeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Live real-time channel connections",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.AuthResults,
		r.StorageState,
		r.RealtimeConnections,
	)

	return r
}

// RecordRequest records one served HTTP request.
func (r *Registry) RecordRequest(method, stage string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, stage, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, stage).Observe(elapsed.Seconds())
}

// RecordAuth records a credential verification result ("ok", "rejected").
func (r *Registry) RecordAuth(result string) {
	r.AuthResults.WithLabelValues(result).Inc()
}

// SetStorageState publishes the numeric storage connection state.
func (r *Registry) SetStorageState(state int) {
	r.StorageState.Set(float64(state))
}

// IncRealtime increments the live real-time connection gauge.
func (r *Registry) IncRealtime() {
	r.RealtimeConnections.Inc()
}

// DecRealtime decrements the live real-time connection gauge.
func (r *Registry) DecRealtime() {
	r.RealtimeConnections.Dec()
}

// Handler returns the HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer lets other components add their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}
