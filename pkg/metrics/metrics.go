package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
// Все методы безопасны для nil-получателя (метрики выключены в конфиге)
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge

	BookingsTotal       *prometheus.CounterVec
	AvailabilityQueries *prometheus.CounterVec
	AvailableSlots      prometheus.Histogram

	NotificationsTotal  *prometheus.CounterVec
	SchedulerRunsTotal  *prometheus.CounterVec
	RateLimitedRequests prometheus.Counter
}

// New регистрирует метрики в глобальном prometheus registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в указанном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBOpenConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}),

		DBInUseConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections in use",
			ConstLabels: constLabels,
		}),

		DBIdleConnections: f.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}),

		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"result"}),

		AvailabilityQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_queries_total",
			Help:        "Availability queries, degraded=true when a read failed",
			ConstLabels: constLabels,
		}, []string{"degraded"}),

		AvailableSlots: f.NewHistogram(prometheus.HistogramOpts{
			Name:        "availability_slots_count",
			Help:        "Number of slots returned per availability query",
			ConstLabels: constLabels,
			Buckets:     []float64{0, 1, 5, 10, 20, 40, 80},
		}),

		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notification deliveries by channel and result",
			ConstLabels: constLabels,
		}, []string{"channel", "result"}),

		SchedulerRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_runs_total",
			Help:        "Periodic task runs by task and result",
			ConstLabels: constLabels,
		}, []string{"task", "result"}),

		RateLimitedRequests: f.NewCounter(prometheus.CounterOpts{
			Name:        "http_rate_limited_total",
			Help:        "Requests rejected by the rate limiter",
			ConstLabels: constLabels,
		}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) SetDBPool(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(open))
	m.DBInUseConnections.Set(float64(inUse))
	m.DBIdleConnections.Set(float64(idle))
}

// ObserveBooking result: created или машинный код ошибки (slot_unavailable, ...)
func (m *Metrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAvailability(slots int, degraded bool) {
	if m == nil {
		return
	}
	m.AvailabilityQueries.WithLabelValues(strconv.FormatBool(degraded)).Inc()
	if !degraded {
		m.AvailableSlots.Observe(float64(slots))
	}
}

func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsTotal.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) ObserveSchedulerRun(task string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SchedulerRunsTotal.WithLabelValues(task, result).Inc()
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedRequests.Inc()
}
