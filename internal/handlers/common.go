package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/formacode/course-service/internal/errors"
	"github.com/formacode/course-service/internal/services"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides shared logging and error mapping for all handlers.
type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// parseIDParam reads a numeric path parameter. A zero return means the
// response has already been written.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	value, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(value)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var invalidType *apperrors.InvalidTypeError
	if errors.As(err, &invalidType) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid type",
			Details: invalidType,
		})
		return
	}

	var persistence *services.PersistenceError
	if errors.As(err, &persistence) {
		message := "Import failed, no changes were applied"
		if !persistence.RolledBack {
			message = "Import failed and the store may be inconsistent"
		}
		h.logger.Error("persistence failure",
			"op", persistence.Op,
			"course_id", persistence.CourseID,
			"rolled_back", persistence.RolledBack,
			"error", persistence.Err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: message,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrGameUnavailable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Game content is invalid or unavailable",
		})
	case errors.Is(err, services.ErrItemNotPlayable):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Item does not carry playable game content",
		})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.logger.Error("unexpected service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
