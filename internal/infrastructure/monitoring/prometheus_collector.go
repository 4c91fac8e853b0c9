package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements ports.Collector on top of the default
// Prometheus registry, exposed by the status API's /metrics endpoint.
type PrometheusCollector struct {
	framesCaptured  prometheus.Counter
	framesBroadcast prometheus.Counter
	pixelsKeyed     prometheus.Counter
	payloadBytes    prometheus.Counter

	consumersConnected prometheus.Gauge
	consumersDropped   prometheus.Counter

	frameDuration prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		framesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromacast_frames_captured_total",
			Help: "Total number of frames pulled from the capture source",
		}),

		framesBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromacast_frames_broadcast_total",
			Help: "Total number of frames fanned out to consumers",
		}),

		pixelsKeyed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromacast_pixels_keyed_total",
			Help: "Total number of pixels substituted with the background frame",
		}),

		payloadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromacast_payload_bytes_total",
			Help: "Total serialized payload bytes handed to the broadcast path",
		}),

		consumersConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chromacast_consumers_connected",
			Help: "Number of currently registered consumer sinks",
		}),

		consumersDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromacast_consumers_dropped_total",
			Help: "Total number of sinks pruned after a failed write or flush",
		}),

		frameDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chromacast_frame_processing_duration_seconds",
			Help:    "Per-frame decode/filter/encode/broadcast duration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

func (p *PrometheusCollector) FrameCaptured() {
	p.framesCaptured.Inc()
}

func (p *PrometheusCollector) FrameBroadcast(delivered int, payloadBytes int, elapsed time.Duration) {
	p.framesBroadcast.Inc()
	p.payloadBytes.Add(float64(payloadBytes))
	p.frameDuration.Observe(elapsed.Seconds())
}

func (p *PrometheusCollector) PixelsKeyed(n int) {
	p.pixelsKeyed.Add(float64(n))
}

func (p *PrometheusCollector) ConsumerRegistered() {
	p.consumersConnected.Inc()
}

func (p *PrometheusCollector) ConsumerDropped(n int) {
	p.consumersConnected.Sub(float64(n))
	p.consumersDropped.Add(float64(n))
}
