// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_decode"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Decode lifecycle metrics
	DecodesTotal   *prometheus.CounterVec
	DecodesActive  prometheus.Gauge
	DecodeDuration prometheus.Histogram

	// Utterance and hypothesis metrics
	UtterancesTotal prometheus.Counter
	HypothesesTotal *prometheus.CounterVec
	HypothesesEmpty prometheus.Counter

	// Audio metrics
	AudioBytesIngested prometheus.Counter
	FramesProcessed    prometheus.Counter

	// Engine metrics
	EngineErrors *prometheus.CounterVec

	// Callback dispatch metrics
	CallbacksDropped prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// gRPC metrics
	GRPCCalls *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DecodesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decodes_total",
			Help:      "Total number of decode lifecycles started",
		}, []string{"mode"}),
		DecodesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "decodes_active",
			Help:      "Number of currently active decode lifecycles",
		}),
		DecodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Duration of file decodes in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),

		UtterancesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Total number of utterance boundaries consumed",
		}),
		HypothesesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hypotheses_total",
			Help:      "Total number of non-empty hypotheses produced",
		}, []string{"mode"}),
		HypothesesEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hypotheses_empty_total",
			Help:      "Total number of utterances closed with no speech recognized",
		}),

		AudioBytesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_ingested_total",
			Help:      "Total audio bytes fed into the decode engine",
		}),
		FramesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Total engine-reported processed frames",
		}),

		EngineErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Total number of decode engine errors",
		}, []string{"op"}),

		CallbacksDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_dropped_total",
			Help:      "Total callbacks dropped because the dispatch queue was full",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		GRPCCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_calls_total",
			Help:      "Total number of gRPC calls handled",
		}, []string{"method", "code"}),
	}
}

// RecordDecodeStart records a decode lifecycle starting.
func (m *Metrics) RecordDecodeStart(mode string) {
	m.DecodesTotal.WithLabelValues(mode).Inc()
	m.DecodesActive.Inc()
}

// RecordDecodeEnd records a decode lifecycle ending.
func (m *Metrics) RecordDecodeEnd(durationSeconds float64) {
	m.DecodesActive.Dec()
	m.DecodeDuration.Observe(durationSeconds)
}

// RecordUtterance records an utterance boundary being consumed.
func (m *Metrics) RecordUtterance() {
	m.UtterancesTotal.Inc()
}

// RecordHypothesis records the outcome of a closed utterance.
func (m *Metrics) RecordHypothesis(mode string, empty bool) {
	if empty {
		m.HypothesesEmpty.Inc()
		return
	}
	m.HypothesesTotal.WithLabelValues(mode).Inc()
}

// RecordAudioIngested records audio fed into the engine.
func (m *Metrics) RecordAudioIngested(bytes, frames int) {
	m.AudioBytesIngested.Add(float64(bytes))
	m.FramesProcessed.Add(float64(frames))
}

// RecordEngineError records a decode engine failure by operation.
func (m *Metrics) RecordEngineError(op string) {
	m.EngineErrors.WithLabelValues(op).Inc()
}

// RecordCallbackDropped records a callback lost to dispatch backpressure.
func (m *Metrics) RecordCallbackDropped() {
	m.CallbacksDropped.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordGRPCCall records a handled gRPC call.
func (m *Metrics) RecordGRPCCall(method, code string) {
	m.GRPCCalls.WithLabelValues(method, code).Inc()
}
