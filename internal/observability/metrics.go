package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ttsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_router_requests_total",
		Help: "Total number of TTS requests by provider and status",
	}, []string{"provider", "status"})

	synthesisLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tts_router_synthesis_latency_seconds",
		Help:    "Provider synthesis latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"provider"})

	pipelineLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tts_router_pipeline_latency_seconds",
		Help:    "Audio anonymization pipeline latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})

	pipelineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_router_pipeline_failures_total",
		Help: "Pipeline failures by stage",
	}, []string{"stage"})

	audioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tts_router_audio_bytes_total",
		Help: "Audio bytes entering and leaving the pipeline",
	}, []string{"direction"})
)

// RecordRequest counts one TTS request outcome.
func RecordRequest(provider, status string) {
	ttsRequests.WithLabelValues(provider, status).Inc()
}

// ObserveSynthesis records the time a provider took to synthesize.
func ObserveSynthesis(provider string, elapsed time.Duration) {
	synthesisLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObservePipeline records one pipeline run: latency and byte counts.
func ObservePipeline(elapsed time.Duration, inBytes, outBytes int) {
	pipelineLatency.Observe(elapsed.Seconds())
	audioBytes.WithLabelValues("in").Add(float64(inBytes))
	audioBytes.WithLabelValues("out").Add(float64(outBytes))
}

// RecordPipelineFailure counts a pipeline failure at the given stage.
func RecordPipelineFailure(stage string) {
	pipelineFailures.WithLabelValues(stage).Inc()
}
