package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"traffic-forecast-api/app"
	"traffic-forecast-api/metrics"
	"traffic-forecast-api/models"
	"traffic-forecast-api/services"

	"github.com/gin-gonic/gin"
)

type AdditionalInfo struct {
	AverageSpeed         float64 `json:"average_speed"`
	CongestionLevel      float64 `json:"congestion_level"`
	WeatherCondition     string  `json:"weather_condition"`
	ConstructionActivity string  `json:"construction_activity"`
	BasisDate            string  `json:"basis_date"`
}

type PredictionResponse struct {
	PredictedVolume int                  `json:"predicted_volume"`
	TrafficLevel    string               `json:"traffic_level"`
	Area            string               `json:"area"`
	Road            string               `json:"road"`
	PredictionDate  string               `json:"prediction_date"`
	ModelVersion    string               `json:"model_version"`
	AdditionalInfo  AdditionalInfo       `json:"additional_info"`
	HistoricalData  []models.Observation `json:"historical_data"`
}

// PredictionHandler serves today's forecast and the model's held-out
// metrics. Forecasts are not cached because they depend on the date.
type PredictionHandler struct {
	state   *app.State
	cache   *services.CacheService
	metrics *metrics.Collector
	now     func() time.Time
}

func NewPredictionHandler(state *app.State, cache *services.CacheService, m *metrics.Collector) *PredictionHandler {
	return &PredictionHandler{state: state, cache: cache, metrics: m, now: time.Now}
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.PredictionsFailed.WithLabelValues(CodeInvalidRequest).Inc()
		badRequest(c, err)
		return
	}

	f, err := h.state.Forecaster.Today(req.Area, req.Road, h.now())
	if err != nil {
		_, code := classify(err)
		h.metrics.PredictionsFailed.WithLabelValues(code).Inc()
		respondError(c, err)
		return
	}

	resp := PredictionResponse{
		PredictedVolume: int(f.PredictedVolume),
		TrafficLevel:    f.Level,
		Area:            f.Area,
		Road:            f.Road,
		PredictionDate:  f.Date.Format("2006-01-02"),
		ModelVersion:    h.state.Version,
		AdditionalInfo: AdditionalInfo{
			AverageSpeed:         f.Basis.AverageSpeed,
			CongestionLevel:      f.Basis.CongestionLevel,
			WeatherCondition:     f.Basis.Weather,
			ConstructionActivity: f.Basis.Construction,
			BasisDate:            f.Basis.Date.Format("2006-01-02"),
		},
		HistoricalData: f.History,
	}
	h.metrics.PredictionsServed.Inc()
	h.publish(resp)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *PredictionHandler) publish(resp PredictionResponse) {
	if !h.cache.Available() {
		return
	}
	msg := gin.H{
		"area":             resp.Area,
		"road":             resp.Road,
		"predicted_volume": resp.PredictedVolume,
		"traffic_level":    resp.TrafficLevel,
		"prediction_date":  resp.PredictionDate,
		"model_version":    resp.ModelVersion,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		sent, err := h.cache.Publish(ctx, services.ForecastChannel, msg)
		if err != nil {
			log.Printf("Publish forecast for %s/%s failed: %v", resp.Area, resp.Road, err)
			return
		}
		if sent {
			h.metrics.ForecastsPublished.Inc()
		}
	}()
}

func (h *PredictionHandler) GetModelMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.state.Forecaster.Model().Metrics()})
}
