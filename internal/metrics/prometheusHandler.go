package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Number of documents that completed ingestion",
})

var chunksSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_skipped_total",
	Help: "Chunks dropped during ingestion because embedding or upsert failed",
})

var activeIngestWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_ingest_worker_count",
	Help: "Number of chunk workers currently embedding and upserting",
})

var cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "semantic_cache_hits_total",
	Help: "Chat answers served from the semantic cache",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementDocumentsIngested() {
	documentsIngestedTotal.Inc()
}

func IncrementChunksSkipped() {
	chunksSkippedTotal.Inc()
}

func IncrementCacheHits() {
	cacheHitsTotal.Inc()
}

func IncrementActiveIngestWorkerCount() {
	activeIngestWorkerCount.Inc()
}
func DecrementActiveIngestWorkerCount() {
	activeIngestWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent answering a request.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureRequestMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
