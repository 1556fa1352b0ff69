package respond

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// FromError maps the application error taxonomy onto HTTP responses.
// fallbackMessage is used for unclassified errors so internals are not leaked.
func FromError(c *gin.Context, err error, fallbackMessage string) {
	if rl, ok := apperr.AsRateLimit(err); ok {
		secs := rl.RemainingSeconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		Error(c, http.StatusTooManyRequests, "rate_limited", rl.Error(), gin.H{
			"operation":        rl.Operation,
			"remainingSeconds": secs,
		})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrValidation):
		Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, apperr.ErrConfiguration):
		Error(c, http.StatusInternalServerError, "configuration_error", err.Error(), nil)
	case errors.Is(err, apperr.ErrGeneration):
		Error(c, http.StatusUnprocessableEntity, "generation_error", err.Error(), gin.H{
			"fallback": "manual",
		})
	case errors.Is(err, apperr.ErrUpstream):
		Error(c, http.StatusBadGateway, "upstream_error", err.Error(), nil)
	case errors.Is(err, apperr.ErrRender):
		Error(c, http.StatusInternalServerError, "render_error", err.Error(), nil)
	default:
		telemetry.Error("http.unclassified_error", map[string]any{
			"request_id": c.GetString("requestId"),
			"error":      err.Error(),
		})
		Error(c, http.StatusInternalServerError, "internal_error", fallbackMessage, nil)
	}
}
