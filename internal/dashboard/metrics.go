package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered per server so tests can build several servers.
type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	selections prometheus.Counter
	records    *prometheus.GaugeVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "metascope_http_requests_total",
			Help: "Dashboard requests by route and status code.",
		}, []string{"route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metascope_http_request_duration_seconds",
			Help:    "Dashboard request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		selections: f.NewCounter(prometheus.CounterOpts{
			Name: "metascope_selections_total",
			Help: "Year-range selections recomputed.",
		}),
		records: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "metascope_records",
			Help: "Records in the loaded dataset by stage.",
		}, []string{"stage"}),
	}
}
