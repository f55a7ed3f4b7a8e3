package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry; nothing is registered globally.
type Collector struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec   // route, method, status
	RequestDuration *prometheus.HistogramVec // route

	PredictionsServed  prometheus.Counter
	PredictionsFailed  *prometheus.CounterVec // code
	ForecastsPublished prometheus.Counter

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	DatasetRows *prometheus.GaugeVec // dataset, state=kept|dropped

	TrainingDuration prometheus.Gauge
	ModelR2          prometheus.Gauge
	ModelRMSE        prometheus.Gauge
	ModelMAE         prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_api_requests_total",
			Help: "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "traffic_api_request_duration_seconds",
			Help:    "Duration of HTTP requests by route.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"route"}),
		PredictionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_api_predictions_served_total",
			Help: "Total number of volume forecasts returned.",
		}),
		PredictionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traffic_api_predictions_failed_total",
			Help: "Total number of forecast requests that failed, by error code.",
		}, []string{"code"}),
		ForecastsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_api_forecasts_published_total",
			Help: "Total number of forecasts published to Redis.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_api_cache_hits_total",
			Help: "Total number of responses served from Redis.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traffic_api_cache_misses_total",
			Help: "Total number of cache lookups that fell through to computation.",
		}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "traffic_api_dataset_rows",
			Help: "Rows loaded at startup by dataset and outcome.",
		}, []string{"dataset", "state"}),
		TrainingDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_api_training_duration_seconds",
			Help: "Wall time spent training the forecast model at startup.",
		}),
		ModelR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_api_model_r2",
			Help: "R² of the forecast model on the held-out split.",
		}),
		ModelRMSE: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_api_model_rmse",
			Help: "Root mean squared error on the held-out split.",
		}),
		ModelMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traffic_api_model_mae",
			Help: "Mean absolute error on the held-out split.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Requests, c.RequestDuration,
		c.PredictionsServed, c.PredictionsFailed, c.ForecastsPublished,
		c.CacheHits, c.CacheMisses,
		c.DatasetRows,
		c.TrainingDuration, c.ModelR2, c.ModelRMSE, c.ModelMAE,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
