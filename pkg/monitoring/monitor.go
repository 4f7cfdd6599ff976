package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ProviderAttempts 大模型调用次数，outcome 取 success/timeout/status/envelope/transport
	ProviderAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_plan_provider_attempts_total",
			Help: "Total number of AI provider call attempts",
		},
		[]string{"provider", "outcome"},
	)

	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "study_plan_provider_call_duration_seconds",
			Help:    "Duration of a single AI provider call attempt",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 240},
		},
		[]string{"provider"},
	)

	// RecoveryStrategy 每个服务商响应命中的恢复策略
	RecoveryStrategy = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_plan_recovery_strategy_total",
			Help: "Recovery strategy that produced a candidate plan",
		},
		[]string{"provider", "strategy"},
	)

	PlansGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "study_plan_generated_total",
			Help: "Study plans returned to clients by source",
		},
		[]string{"source"},
	)

	SynthesizedDays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "study_plan_synthesized_days_total",
			Help: "Daily plans synthesized locally to fill gaps in provider output",
		},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ProviderAttempts)
		prometheus.MustRegister(ProviderDuration)
		prometheus.MustRegister(RecoveryStrategy)
		prometheus.MustRegister(PlansGenerated)
		prometheus.MustRegister(SynthesizedDays)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
