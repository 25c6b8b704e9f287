package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PrescriptionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prescriptions_recorded_total",
		Help: "Prescription lines created or merged.",
	})

	PaymentsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_collected_total",
		Help: "Payment batches committed.",
	})

	ServicesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "services_completed_total",
		Help: "Transactions completed, by department.",
	}, []string{"department"})
)

// Handler records request counts and latency for every route.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
