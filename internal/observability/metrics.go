package observability

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and orchestration flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	operationsTotal          *prometheus.CounterVec
	operationDuration        *prometheus.HistogramVec
	operationsInflight       *prometheus.GaugeVec
	notificationsSentTotal   *prometheus.CounterVec
	notificationsFailedTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cosmos_provisioner",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cosmos_provisioner",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cosmos_provisioner",
				Name:      "operations_total",
				Help:      "Total number of finished provisioning operations by operation and result.",
			},
			[]string{"operation", "result"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cosmos_provisioner",
				Name:      "operation_duration_seconds",
				Help:      "Provider operation duration in seconds from accept to completion.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
			},
			[]string{"operation"},
		),
		operationsInflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cosmos_provisioner",
				Name:      "operations_inflight",
				Help:      "Current number of in-flight provider operations by operation.",
			},
			[]string{"operation"},
		),
		notificationsSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cosmos_provisioner",
				Name:      "notifications_sent_total",
				Help:      "Total number of outcome notifications delivered by kind.",
			},
			[]string{"kind"},
		),
		notificationsFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cosmos_provisioner",
				Name:      "notifications_failed_total",
				Help:      "Total number of outcome notifications that could not be delivered by kind.",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.operationsTotal,
		m.operationDuration,
		m.operationsInflight,
		m.notificationsSentTotal,
		m.notificationsFailedTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncOperationFinished(operation string, result string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

func (m *Metrics) ObserveOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.operationDuration.WithLabelValues(normalizeLabel(operation)).Observe(seconds)
}

func (m *Metrics) IncOperationInFlight(operation string) {
	if m == nil {
		return
	}
	m.operationsInflight.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *Metrics) DecOperationInFlight(operation string) {
	if m == nil {
		return
	}
	m.operationsInflight.WithLabelValues(normalizeLabel(operation)).Dec()
}

func (m *Metrics) IncNotificationSent(kind string) {
	if m == nil {
		return
	}
	m.notificationsSentTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncNotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.notificationsFailedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

// statusFromResult resolves the status a request will answer with. The
// middleware observes errors before the app's error handler renders them, so
// status-carrying errors must be unwrapped here.
func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		var statusErr interface{ HTTPStatus() int }
		if errors.As(err, &statusErr) {
			return statusErr.HTTPStatus()
		}
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
