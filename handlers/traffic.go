package handlers

import (
	"net/http"

	"traffic-forecast-api/aggregate"
	"traffic-forecast-api/app"

	"github.com/gin-gonic/gin"
)

type RouteRequest struct {
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// TrafficHandler serves per-hour statistics of the route dataset.
type TrafficHandler struct {
	state *app.State
	cache responseCache
}

func NewTrafficHandler(state *app.State, cache responseCache) *TrafficHandler {
	return &TrafficHandler{state: state, cache: cache}
}

func (h *TrafficHandler) GetRoutes(c *gin.Context) {
	key := h.cache.key("routes")

	var cached aggregate.Locations
	if h.cache.lookup(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	resp := h.state.Routes.Locations()
	h.cache.store(key, resp)
	c.JSON(http.StatusOK, resp)
}

// GetHourly returns 24 entries, one per hour of day, for a source and
// destination pair.
func (h *TrafficHandler) GetHourly(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	key := h.cache.key("traffic", req.Source, req.Destination)

	var cached []aggregate.HourlyStats
	if h.cache.lookup(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	hourly, err := h.state.Routes.Hourly(req.Source, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.store(key, hourly)
	c.JSON(http.StatusOK, hourly)
}

func (h *TrafficHandler) GetSummary(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	key := h.cache.key("summary", req.Source, req.Destination)

	var cached aggregate.RouteSummary
	if h.cache.lookup(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	summary, err := h.state.Routes.Summary(req.Source, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.store(key, summary)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
