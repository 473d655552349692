package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platewise",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "platewise",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platewise",
		Name:      "scheduler_job_runs_total",
		Help:      "Scheduler job executions by job name.",
	}, []string{"job"})

	jobErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platewise",
		Name:      "scheduler_job_errors_total",
		Help:      "Scheduler job failures by job name.",
	}, []string{"job"})

	jobItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platewise",
		Name:      "scheduler_job_items_processed_total",
		Help:      "Items processed by scheduler jobs.",
	}, []string{"job"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "platewise",
		Name:      "scheduler_job_duration_seconds",
		Help:      "Scheduler job duration by job name.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"job"})
)

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// IncJobRun counts a job execution.
func IncJobRun(job string) {
	jobRunsTotal.WithLabelValues(job).Inc()
}

// IncJobError counts a failed job execution.
func IncJobError(job string) {
	jobErrorsTotal.WithLabelValues(job).Inc()
}

// AddJobProcessed counts items processed by a job.
func AddJobProcessed(job string, count int) {
	if count <= 0 {
		return
	}
	jobItemsProcessed.WithLabelValues(job).Add(float64(count))
}

// ObserveJobDuration records a job execution duration.
func ObserveJobDuration(job string, d time.Duration) {
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
