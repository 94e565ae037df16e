package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_status_transitions_total",
			Help: "Stand status changes by target status",
		},
		[]string{"status"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_submissions_total",
			Help: "Accepted stand submissions by kind",
		},
		[]string{"kind"},
	)

	MessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stand_discussion_messages_total",
			Help: "Discussion messages sent",
		},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stand_notification_failures_total",
			Help: "Notifications that could not be published",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StatusTransitions,
		SubmissionsTotal,
		MessagesTotal,
		NotificationFailures,
	)
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
