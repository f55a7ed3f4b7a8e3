package handlers

import (
	"traffic-forecast-api/app"
	"traffic-forecast-api/config"
	"traffic-forecast-api/metrics"
	"traffic-forecast-api/middleware"
	"traffic-forecast-api/services"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every endpoint against state. cache may be disabled; its
// keys are namespaced by state.CacheNamespace.
func NewRouter(state *app.State, cache *services.CacheService, m *metrics.Collector, cors config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SetupCORS(cors))
	router.Use(middleware.Metrics(m))

	cache = cache.WithPrefix(state.CacheNamespace)
	rc := responseCache{cache: cache, metrics: m}

	traffic := NewTrafficHandler(state, rc)
	roads := NewRoadsHandler(state, rc)
	prediction := NewPredictionHandler(state, cache, m)

	health := Health(state)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", health)

		api.GET("/routes", traffic.GetRoutes)
		api.POST("/traffic", traffic.GetHourly)
		api.POST("/routes/summary", traffic.GetSummary)

		api.GET("/locations", roads.GetLocations)
		api.POST("/historical", roads.GetHistorical)

		api.POST("/predict", prediction.Predict)
		api.GET("/model-metrics", prediction.GetModelMetrics)
	}

	return router
}
