package prometheus

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type PrometheusAdapter struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

var _ ports.MetricsPort = (*PrometheusAdapter)(nil)

func NewPrometheusAdapter() *PrometheusAdapter {
	return NewPrometheusAdapterWithRegisterer(prometheus.DefaultRegisterer)
}

func NewPrometheusAdapterWithRegisterer(reg prometheus.Registerer) *PrometheusAdapter {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workshop_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_bike_transitions_total",
		Help: "Bike workflow transitions by source and target status.",
	}, []string{"from", "to"})

	return &PrometheusAdapter{
		requests:    register(reg, requests),
		duration:    register(reg, duration),
		transitions: register(reg, transitions),
	}
}

// register returns the already registered collector when one with the same description exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (p *PrometheusAdapter) RecordMetrics(c *gin.Context, start time.Time) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	method := c.Request.Method
	p.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	p.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (p *PrometheusAdapter) RecordTransition(from, to string) {
	p.transitions.WithLabelValues(from, to).Inc()
}
