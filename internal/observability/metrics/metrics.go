package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics instruments the gin request path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Metrics exposes application-level instruments.
type Metrics struct {
	PaymentsRecorded  prometheus.Counter
	DocumentsMinted   *prometheus.CounterVec
	RateLimitRejected prometheus.Counter
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Count of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_payments_recorded_total",
			Help: "Count of successfully recorded bill payments.",
		}),
		DocumentsMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_numbers_minted_total",
			Help: "Count of minted document numbers by scope.",
		}, []string{"scope"}),
		RateLimitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_rejected_total",
			Help: "Count of requests rejected by the rate limiter.",
		}),
	}
	for _, c := range []prometheus.Collector{m.PaymentsRecorded, m.DocumentsMinted, m.RateLimitRejected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GinMiddleware records request counts and latencies. Routes are labeled by
// the matched pattern, not the raw path, to keep cardinality bounded.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
