package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/services"
	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", c.GetString(userIDKey)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).InfoContext(c.Request.Context(), message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", c.GetString(userIDKey)}, additionalFields...)
	utils.GetLoggerFromContext(c, h.logger).LogError(err, message, fields...)
}

// handleServiceError maps service error kinds to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    "VALIDATION_FAILED",
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case services.IsBadRequest(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid submission",
			Details: err.Error(),
			Code:    "BAD_REQUEST",
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "UNAUTHORIZED",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: notFoundMessage(err),
			Code:    "NOT_FOUND",
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: conflictMessage(err),
			Code:    "CONFLICT",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    "INTERNAL_ERROR",
		})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrTestNotFound):
		return "Test not found"
	case errors.Is(err, services.ErrResultNotFound):
		return "Result not found"
	default:
		return "Resource not found"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrResultNotPending):
		return "Result is not waiting for manual review"
	case errors.Is(err, services.ErrResultSuperseded):
		return "Result has already been regraded"
	default:
		return "Resource conflict"
	}
}
