package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the HTTP request instruments fed by the application's
// request and response lifecycle events.
type Collector struct {
	requestsTotal *prometheus.CounterVec
	inFlight      prometheus.Gauge
	duration      *prometheus.HistogramVec
}

// New registers the request instruments on reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled HTTP requests.",
		}, []string{"method", "status"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of requests currently being handled.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request handling duration from context creation to response completion.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// RequestStarted records a request entering the pipeline.
func (c *Collector) RequestStarted() {
	c.inFlight.Inc()
}

// RequestFinished records a completed request using the context's creation
// timestamp for the duration observation.
func (c *Collector) RequestFinished(method string, status int, started time.Time) {
	c.inFlight.Dec()
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
