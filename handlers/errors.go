package handlers

import (
	"errors"
	"log"
	"net/http"

	"traffic-forecast-api/aggregate"
	"traffic-forecast-api/encoder"
	"traffic-forecast-api/forecast"
	"traffic-forecast-api/middleware"

	"github.com/gin-gonic/gin"
)

// Error codes carried in every failed response body.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeUnknownCategory = "unknown_category"
	CodeNotFound        = "not_found"
	CodeFeatureMismatch = "feature_mismatch"
	CodeInternal        = "internal"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// classify maps a domain error onto a status and code.
func classify(err error) (int, string) {
	var (
		unknown  *encoder.UnknownCategoryError
		noRoute  *aggregate.NotFoundError
		noRoad   *forecast.NotFoundError
		mismatch *forecast.FeatureMismatchError
	)
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound, CodeUnknownCategory
	case errors.As(err, &noRoute), errors.As(err, &noRoad):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, aggregate.ErrInvalidHour):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.As(err, &mismatch):
		return http.StatusInternalServerError, CodeFeatureMismatch
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s failed: %v", middleware.GetRequestID(c), c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  CodeInvalidRequest,
	})
}
