package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketforge"

// Recorder publishes signal and model metrics on its own registry. A nil *Recorder
// records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	signals       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	confidence    *prometheus.GaugeVec
	trainings     *prometheus.CounterVec
	trainDuration *prometheus.HistogramVec
	accuracy      *prometheus.GaugeVec
	scanDuration  prometheus.Histogram
}

func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		signals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_total",
				Help:      "Signals produced by symbol and action",
			},
			[]string{"symbol", "action"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_failures_total",
				Help:      "Analyses that fell back to WAIT, by reason",
			},
			[]string{"reason"},
		),
		confidence: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "signal_confidence",
				Help:      "Confidence of the last signal for a symbol",
			},
			[]string{"symbol"},
		),
		trainings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "trainings_total",
				Help:      "Model trainings by timeframe and outcome",
			},
			[]string{"timeframe", "outcome"},
		),
		trainDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "training_duration_seconds",
				Help:      "Duration of model trainings",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"timeframe"},
		),
		accuracy: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "accuracy",
				Help:      "Holdout accuracy of the last trained model",
			},
			[]string{"symbol", "timeframe"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of market scans",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (r *Recorder) RecordSignal(symbol string, action string, confidence float64) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(symbol, action).Inc()
	r.confidence.WithLabelValues(symbol).Set(confidence)
}

func (r *Recorder) RecordFailure(reason string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordTraining(symbol string, timeframe string, seconds float64, accuracy float64, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.trainings.WithLabelValues(timeframe, outcome).Inc()
	r.trainDuration.WithLabelValues(timeframe).Observe(seconds)
	if err == nil {
		r.accuracy.WithLabelValues(symbol, timeframe).Set(accuracy)
	}
}

func (r *Recorder) RecordScan(seconds float64) {
	if r == nil {
		return
	}
	r.scanDuration.Observe(seconds)
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
