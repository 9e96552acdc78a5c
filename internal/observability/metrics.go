package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus gauges, counters, and histograms for the
// dashboard pipeline and its HTTP surface.
type Metrics struct {
	// Dataset load metrics.
	DatasetRows      prometheus.Gauge
	DatasetSkipped   prometheus.Gauge
	DatasetBadCoords prometheus.Gauge

	// GeoJSON conversion metrics.
	GeoFeatures prometheus.Gauge
	GeoDropped  prometheus.Gauge

	DashboardReady      prometheus.Gauge
	ChartRenderDuration prometheus.Histogram

	ChartRequests *prometheus.CounterVec // labels: chart, format
	HTTPRequests  *prometheus.CounterVec // labels: method, code
}

// NewMetrics creates and registers all dashboard metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "dataset_rows",
			Help:      "Usable price records loaded from the CSV.",
		}),
		DatasetSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "dataset_rows_skipped",
			Help:      "CSV rows dropped for a missing date or price.",
		}),
		DatasetBadCoords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "dataset_bad_coordinates",
			Help:      "Rows whose coordinates could not be parsed.",
		}),
		GeoFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "geojson_features",
			Help:      "Point features in the published collection.",
		}),
		GeoDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "geojson_records_dropped",
			Help:      "Records excluded from the collection for unusable coordinates.",
		}),
		DashboardReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gncv_dash",
			Name:      "dashboard_ready",
			Help:      "1 when the dashboard is serving data, 0 when degraded.",
		}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gncv_dash",
			Name:      "chart_render_duration_seconds",
			Help:      "Duration of the startup figure rasterization pass.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gncv_dash",
			Name:      "chart_requests_total",
			Help:      "Chart image requests by chart and format.",
		}, []string{"chart", "format"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gncv_dash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}

	prometheus.MustRegister(
		m.DatasetRows,
		m.DatasetSkipped,
		m.DatasetBadCoords,
		m.GeoFeatures,
		m.GeoDropped,
		m.DashboardReady,
		m.ChartRenderDuration,
		m.ChartRequests,
		m.HTTPRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetRows:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "dataset_rows"}),
		DatasetSkipped:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "dataset_rows_skipped"}),
		DatasetBadCoords:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "dataset_bad_coordinates"}),
		GeoFeatures:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "geojson_features"}),
		GeoDropped:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "geojson_records_dropped"}),
		DashboardReady:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "gncv_dash", Name: "dashboard_ready"}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "gncv_dash", Name: "chart_render_duration_seconds"}),
		ChartRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "gncv_dash", Name: "chart_requests_total"}, []string{"chart", "format"}),
		HTTPRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "gncv_dash", Name: "http_requests_total"}, []string{"method", "code"}),
	}
}
