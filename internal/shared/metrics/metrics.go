package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	generationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_generations_total",
		Help: "Resume versions committed by the generation path, by generator.",
	}, []string{"generator"})

	generationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_generation_failures_total",
		Help: "Generation attempts that ended in an error, by reason.",
	}, []string{"reason"})

	importsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "resume_imports_total",
		Help: "Resume versions created through manual import.",
	})

	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_fit_analyses_total",
		Help: "Fit analyses by outcome.",
	}, []string{"outcome"})

	rateLimitDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_rate_limit_denials_total",
		Help: "Requests denied by the per-user cooldown, by operation.",
	}, []string{"operation"})

	llmDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_llm_call_duration_seconds",
		Help:    "Latency of generative service calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 90},
	}, []string{"operation"})

	renderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_render_duration_seconds",
		Help:    "PDF layout and encoding time.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	renderPages = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_render_pages",
		Help:    "Pages per rendered resume.",
		Buckets: []float64{1, 2, 3, 4, 6, 10},
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		generationsTotal,
		generationFailuresTotal,
		importsTotal,
		analysesTotal,
		rateLimitDenials,
		llmDuration,
		renderDuration,
		renderPages,
	)
}

// IncGeneration counts a committed version by generator ("ai" or "fallback").
func IncGeneration(generator string) {
	generationsTotal.WithLabelValues(generator).Inc()
}

// IncGenerationFailure counts a failed generation by reason.
func IncGenerationFailure(reason string) {
	generationFailuresTotal.WithLabelValues(reason).Inc()
}

// IncImport counts an imported version.
func IncImport() {
	importsTotal.Inc()
}

// IncAnalysis counts a fit analysis outcome ("completed" or "failed").
func IncAnalysis(outcome string) {
	analysesTotal.WithLabelValues(outcome).Inc()
}

// IncRateLimitDenied counts a cooldown denial.
func IncRateLimitDenied(operation string) {
	rateLimitDenials.WithLabelValues(operation).Inc()
}

// ObserveLLMCall records the latency of one generative call.
func ObserveLLMCall(operation string, d time.Duration) {
	llmDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveRender records a finished render.
func ObserveRender(d time.Duration, pages int) {
	renderDuration.Observe(d.Seconds())
	renderPages.Observe(float64(pages))
}

// Registry exposes the registry for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
