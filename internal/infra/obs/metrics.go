package obs

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.HistogramVec
	sheetFetches *prometheus.CounterVec
	sheetRows    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	relaySends   *prometheus.CounterVec
	rateLimited  prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rentdom",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		sheetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rentdom",
			Name:      "sheet_fetches_total",
			Help:      "Availability spreadsheet fetches by result.",
		}, []string{"result"}),
		sheetRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rentdom",
			Name:      "sheet_rows_total",
			Help:      "Spreadsheet rows by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rentdom",
			Name:      "availability_cache_lookups_total",
			Help:      "Availability cache lookups by outcome (hit, fetch, shared).",
		}, []string{"outcome"}),
		relaySends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rentdom",
			Name:      "inquiry_relay_sends_total",
			Help:      "Inquiry relay deliveries by transport and result.",
		}, []string{"transport", "result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rentdom",
			Name:      "inquiry_rate_limited_total",
			Help:      "Inquiries rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.sheetFetches, m.sheetRows, m.cacheLookups, m.relaySends, m.rateLimited,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) SheetFetch(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sheetFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) SheetRows(parsed, skipped int) {
	if m == nil {
		return
	}
	m.sheetRows.WithLabelValues("parsed").Add(float64(parsed))
	m.sheetRows.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) CacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RelaySend(transport string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.relaySends.WithLabelValues(transport, result).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
	return gin.WrapH(h)
}
