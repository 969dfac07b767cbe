// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package daemon

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "stanley_driver"

// Metrics holds the daemon's Prometheus instruments.
type Metrics struct {
	Temperature  *prom.GaugeVec
	Readings     *prom.CounterVec
	PostDuration prom.Histogram
	PostResults  *prom.CounterVec
	Spooled      prom.Gauge
}

// NewMetrics constructs the instruments and registers them, together with
// the standard Go and process collectors.
func NewMetrics(reg *prom.Registry) *Metrics {
	m := &Metrics{
		Temperature: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "temperature_celsius",
			Help:      "Last valid temperature read from each sensor",
		}, []string{"sensor"}),
		Readings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "readings_total",
			Help:      "Sensor read attempts by outcome",
		}, []string{"sensor", "result"}),
		PostDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "post_duration_seconds",
			Help:      "Duration of archiver submissions",
			Buckets:   prom.DefBuckets,
		}),
		PostResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "post_results_total",
			Help:      "Archiver submissions by outcome",
		}, []string{"result"}),
		Spooled: prom.NewGauge(prom.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "spooled_readings",
			Help:      "Readings waiting in the local spool",
		}),
	}
	reg.MustRegister(
		m.Temperature,
		m.Readings,
		m.PostDuration,
		m.PostResults,
		m.Spooled,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// MetricsHandler returns an http.Handler serving the registry.
func MetricsHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
