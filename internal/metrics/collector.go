package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bin"

// gauges lists the registry keys that move in both directions.
// Every other key is exported as a counter.
var gauges = map[MetricKey]bool{
	PastesLive: true,
}

// exported is the fixed set of registry keys published to Prometheus.
var exported = []MetricKey{
	PastesStoredTotal,
	PastesOverwrittenTotal,
	PastesEvictedTotal,
	PastesLive,
	PasteFetchesTotal,
	PasteMissesTotal,
	PasteRejectedTotal,
	RenderFailuresTotal,
	ReportRunsTotal,
}

// Collector exposes a Registry as Prometheus metrics.
// Values are read at scrape time, so the registry stays the single source of truth.
type Collector struct {
	reg      *Registry
	descs    map[MetricKey]*prometheus.Desc
	capacity *prometheus.Desc
	capValue float64
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector over reg. capacity is published as a
// constant gauge next to the live entry count.
func NewCollector(reg *Registry, capacity int) *Collector {
	descs := make(map[MetricKey]*prometheus.Desc, len(exported))
	for _, key := range exported {
		descs[key] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", string(key)),
			"Paste store metric "+string(key)+".",
			nil, nil,
		)
	}

	return &Collector{
		reg:   reg,
		descs: descs,
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "capacity"),
			"Maximum number of live pastes.",
			nil, nil,
		),
		capValue: float64(capacity),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, key := range exported {
		ch <- c.descs[key]
	}
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.reg.Snapshot()
	for _, key := range exported {
		valueType := prometheus.CounterValue
		if gauges[key] {
			valueType = prometheus.GaugeValue
		}
		ch <- prometheus.MustNewConstMetric(c.descs[key], valueType, float64(snapshot[string(key)]))
	}
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, c.capValue)
}

// HTTPMetrics records per-route request counts and latencies.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors on reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordRequest records one served request.
func (m *HTTPMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// NewPrometheusRegistry builds a dedicated Prometheus registry holding the
// store collector plus the Go runtime and process collectors.
func NewPrometheusRegistry(reg *Registry, capacity int) *prometheus.Registry {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		NewCollector(reg, capacity),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promReg
}

// Handler serves the Prometheus text exposition for promReg.
func Handler(promReg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg})
}
