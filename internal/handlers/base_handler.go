package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
	"github.com/4brn/stddy-bddy/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries shared helpers for all HTTP handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context()).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.FromContext(c.Request.Context()).Error(msg, append(args, "error", err)...)
}

// parseIDParam parses a numeric path parameter. On failure it writes a 400
// response and returns 0; handlers return immediately on a zero ID.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service layer errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		var details interface{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details = verrs
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: details,
		})

	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Permission denied",
			Details: err.Error(),
		})

	case errors.Is(err, services.ErrSessionExpired), errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Not authenticated",
		})

	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: err.Error(),
		})

	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
