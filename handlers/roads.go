package handlers

import (
	"net/http"
	"strconv"

	"traffic-forecast-api/app"
	"traffic-forecast-api/models"

	"github.com/gin-gonic/gin"
)

type LocationRequest struct {
	Area string `json:"area" binding:"required"`
	Road string `json:"road" binding:"required"`
}

type HistoricalRequest struct {
	Area string `json:"area" binding:"required"`
	Road string `json:"road" binding:"required"`
	Days *int   `json:"days" binding:"omitempty,min=1"`
}

type HistoricalData struct {
	Area           string                   `json:"area"`
	Road           string                   `json:"road"`
	HistoricalData []models.HistoricalPoint `json:"historical_data"`
}

// RoadsHandler serves the area/road dataset.
type RoadsHandler struct {
	state *app.State
	cache responseCache
}

func NewRoadsHandler(state *app.State, cache responseCache) *RoadsHandler {
	return &RoadsHandler{state: state, cache: cache}
}

func (h *RoadsHandler) GetLocations(c *gin.Context) {
	key := h.cache.key("locations")

	var cached map[string][]string
	if h.cache.lookup(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	locations := h.state.Forecaster.Locations()
	h.cache.store(key, locations)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": locations})
}

// GetHistorical returns the most recent days of observations for a road,
// newest first.
func (h *RoadsHandler) GetHistorical(c *gin.Context) {
	var req HistoricalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	days := ResolveDays(req.Days)

	var resp HistoricalData
	key := h.cache.key("historical", req.Area, req.Road, strconv.Itoa(days))
	if h.cache.lookup(c.Request.Context(), key, &resp) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
		return
	}

	recent, err := h.state.Forecaster.Recent(req.Area, req.Road, days)
	if err != nil {
		respondError(c, err)
		return
	}

	points := make([]models.HistoricalPoint, len(recent))
	for i, obs := range recent {
		points[i] = obs.Historical()
	}
	resp = HistoricalData{Area: req.Area, Road: req.Road, HistoricalData: points}
	h.cache.store(key, resp)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}
