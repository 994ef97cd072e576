package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/CH4P4R/thumb-compare/internal/model"
)

// Metrics holds all Prometheus collectors for the sync backend.
var Metrics = struct {
	RunsTotal        *prometheus.CounterVec
	UnitsTotal       *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcompare_refresh_runs_total",
			Help: "Refresh runs triggered, by run type and terminal status.",
		},
		[]string{"type", "status"},
	)

	Metrics.UnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbcompare_refresh_units_total",
			Help: "Work units processed, by run type and outcome.",
		},
		[]string{"type", "status"},
	)

	Metrics.RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbcompare_refresh_run_duration_seconds",
			Help:    "Wall-clock duration of refresh runs, by run type.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"type"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thumbcompare_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "thumbcompare_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbcompare_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbcompare_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	// DB pool gauges read live stats from pgxpool.
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "thumbcompare_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "thumbcompare_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.RunsTotal,
		Metrics.UnitsTotal,
		Metrics.RunDuration,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
	)
}

// observeRun records the counters and duration for one finished run.
func observeRun(runType model.RunType, summary *model.RunSummary, elapsed time.Duration) {
	if Metrics.RunsTotal == nil {
		return
	}
	Metrics.RunsTotal.WithLabelValues(string(runType), string(summary.Status)).Inc()
	Metrics.RunDuration.WithLabelValues(string(runType)).Observe(elapsed.Seconds())
	for _, res := range summary.Results {
		Metrics.UnitsTotal.WithLabelValues(string(runType), string(res.Status)).Inc()
	}
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next(): Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers.
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/projects/"):
		rest := path[len("/api/projects/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/projects/:projectId" + rest[i:]
		}
		return "/api/projects/:projectId"
	case strings.HasPrefix(path, "/api/competitors/"):
		rest := path[len("/api/competitors/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/competitors/:competitorId" + rest[i:]
		}
		return "/api/competitors/:competitorId"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
