// Package metrics exposes Prometheus collectors for chart rendering,
// pointer traffic and prediction calls. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vulnviz"

// Prediction outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeAPIError = "api_error"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	chartRenders       *prometheus.CounterVec
	pointerEvents      *prometheus.CounterVec
	predictions        *prometheus.CounterVec
	predictionDuration prometheus.Histogram
	liveCanvases       prometheus.Gauge

	tooltipsOnce sync.Once
}

// New registers all collectors on a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		chartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Full chart rebuilds by chart kind.",
		}, []string{"chart"}),
		pointerEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_events_total",
			Help:      "Pointer events dispatched to charts.",
		}, []string{"chart", "event"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		predictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Latency of calls to the classification service.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		liveCanvases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_canvases",
			Help:      "Chart canvases currently held in memory.",
		}),
	}
	reg.MustRegister(
		m.chartRenders,
		m.pointerEvents,
		m.predictions,
		m.predictionDuration,
		m.liveCanvases,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ChartRendered(chart string) {
	if m == nil {
		return
	}
	m.chartRenders.WithLabelValues(chart).Inc()
}

func (m *Metrics) PointerEvent(chart, event string) {
	if m == nil {
		return
	}
	m.pointerEvents.WithLabelValues(chart, event).Inc()
}

// PredictionDone records one prediction call.
func (m *Metrics) PredictionDone(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInvalid {
		m.predictionDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) CanvasOpened() {
	if m == nil {
		return
	}
	m.liveCanvases.Inc()
}

func (m *Metrics) CanvasClosed() {
	if m == nil {
		return
	}
	m.liveCanvases.Dec()
}

// TrackTooltips exports count as the live tooltip gauge. Only the first
// call registers.
func (m *Metrics) TrackTooltips(count func() int) {
	if m == nil {
		return
	}
	m.tooltipsOnce.Do(func() {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_tooltips",
			Help:      "Tooltips attached across all canvases.",
		}, func() float64 { return float64(count()) }))
	})
}
