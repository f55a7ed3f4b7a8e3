package handlers

import (
	"net/http"

	"traffic-forecast-api/app"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"model_version,omitempty"`
}

func Health(state *app.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Success:     true,
			Message:     "Traffic Forecast API is running",
			ModelLoaded: state.ModelLoaded(),
		}
		if resp.ModelLoaded {
			resp.Version = state.Version
		}
		c.JSON(http.StatusOK, resp)
	}
}
