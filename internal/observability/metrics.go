package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics counts API requests per handler and status.
type HTTPMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewHTTPMetrics(service string) *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	prometheus.MustRegister(requests, latency)
	return &HTTPMetrics{Requests: requests, LatencyMS: latency}
}

// ConsumerMetrics counts choreography handler outcomes per topic.
type ConsumerMetrics struct {
	Processed  *prometheus.CounterVec
	Failed     *prometheus.CounterVec
	Duplicates *prometheus.CounterVec
	LatencyMS  *prometheus.HistogramVec
}

func NewConsumerMetrics(service string) *ConsumerMetrics {
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "events_processed_total",
		Help:      "Integration events handled successfully.",
	}, []string{"topic"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "events_failed_total",
		Help:      "Integration events whose handler returned an error.",
	}, []string{"topic"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "events_duplicate_total",
		Help:      "Integration events skipped as already processed.",
	}, []string{"topic"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopflow",
		Subsystem: service,
		Name:      "event_handle_duration_ms",
		Help:      "Handler latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"topic"})

	prometheus.MustRegister(processed, failed, duplicates, latency)
	return &ConsumerMetrics{Processed: processed, Failed: failed, Duplicates: duplicates, LatencyMS: latency}
}

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
