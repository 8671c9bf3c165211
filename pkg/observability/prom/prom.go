// Package prom implements the observability hooks with Prometheus metrics.
//
// Call [Register] once at startup; it creates the collectors on the given
// registerer and installs them as the global hooks:
//
//	hooks := prom.Register(prometheus.DefaultRegisterer)
//	_ = hooks // keep for tests or custom wiring
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/canicai/canicai/pkg/observability"
)

// Hooks holds the collectors backing every hook interface.
type Hooks struct {
	loadTotal      *prometheus.CounterVec
	loadDuration   prometheus.Histogram
	loadMissing    prometheus.Counter
	saveTotal      *prometheus.CounterVec
	saveDuration   prometheus.Histogram
	checkTotal     *prometheus.CounterVec
	workflowNodes  prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpErrorTotal *prometheus.CounterVec
}

// New creates the collectors on reg without installing them as hooks.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		loadTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_workflow_loads_total",
			Help: "Workflow reconstructions by result",
		}, []string{"result"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canicai_workflow_load_duration_seconds",
			Help:    "Workflow reconstruction duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		loadMissing: f.NewCounter(prometheus.CounterOpts{
			Name: "canicai_workflow_load_missing_components_total",
			Help: "Component ids that could not be resolved during reconstruction",
		}),
		saveTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_workflow_saves_total",
			Help: "Workflow saves by result",
		}, []string{"result"}),
		saveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canicai_workflow_save_duration_seconds",
			Help:    "Workflow save duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		checkTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_workflow_checks_total",
			Help: "Compatibility checks by outcome",
		}, []string{"compatible"}),
		workflowNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "canicai_workflow_nodes",
			Help:    "Node count of loaded or checked workflows",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canicai_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpErrorTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "canicai_http_errors_total",
			Help: "HTTP transport errors by host",
		}, []string{"host"}),
	}
}

// Register creates the collectors on reg and installs them as global hooks.
func Register(reg prometheus.Registerer) *Hooks {
	h := New(reg)
	observability.SetWorkflowHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *Hooks) OnLoadStart(context.Context, string) {}

func (h *Hooks) OnLoadComplete(_ context.Context, _ string, nodeCount, missing int, d time.Duration, err error) {
	h.loadTotal.WithLabelValues(result(err)).Inc()
	h.loadDuration.Observe(d.Seconds())
	h.loadMissing.Add(float64(missing))
	if err == nil {
		h.workflowNodes.Observe(float64(nodeCount))
	}
}

func (h *Hooks) OnSaveComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	h.saveTotal.WithLabelValues(result(err)).Inc()
	h.saveDuration.Observe(d.Seconds())
}

func (h *Hooks) OnCheck(_ context.Context, nodeCount int, compatible bool) {
	h.checkTotal.WithLabelValues(strconv.FormatBool(compatible)).Inc()
	h.workflowNodes.Observe(float64(nodeCount))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string, count int) {
	h.cacheLookups.WithLabelValues(keyType, "hit").Add(float64(count))
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string, count int) {
	h.cacheLookups.WithLabelValues(keyType, "miss").Add(float64(count))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrorTotal.WithLabelValues(host).Inc()
}

var (
	_ observability.WorkflowHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
