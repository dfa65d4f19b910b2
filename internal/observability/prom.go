package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// external collaborators (AI model, speech recognizer, sheets webhook)

	CollabDuration    *prometheus.HistogramVec
	CollabErrorsTotal *prometheus.CounterVec

	// sessions
	SessionsStarted prometheus.Counter
	SessionsEnded   prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "munmentor",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "munmentor",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "munmentor",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		CollabDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "munmentor",
				Subsystem: "collab",
				Name:      "call_duration_seconds",
				Help:      "Outbound collaborator call latency by service.",
				// collaborator calls are slow network calls, skew buckets high
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"service", "status"},
		),
		CollabErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "munmentor",
				Subsystem: "collab",
				Name:      "errors_total",
				Help:      "Collaborator call failures by service.",
			},
			[]string{"service"},
		),
		SessionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "munmentor",
				Subsystem: "sessions",
				Name:      "started_total",
				Help:      "Sessions started by successful logins.",
			},
		),
		SessionsEnded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "munmentor",
				Subsystem: "sessions",
				Name:      "ended_total",
				Help:      "Sessions ended by logout.",
			},
		),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.CollabDuration, p.CollabErrorsTotal,
		p.SessionsStarted, p.SessionsEnded,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveCollab times an outbound collaborator call. A nil receiver is a
// no-op wrapper so clients can be built without metrics in tests.
func (p *Prom) ObserveCollab(service string, fn func() error) error {
	if p == nil {
		return fn()
	}

	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.CollabErrorsTotal.WithLabelValues(service).Inc()
	}

	p.CollabDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())

	return err
}
