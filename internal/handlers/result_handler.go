package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	gradingService services.GradingService
}

func NewResultHandler(gradingService services.GradingService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
	}
}

// SubmitResult grades a submission and records the outcome
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Submitting result", "test_id", req.TestID, "user_id", user.ID)

	result, err := h.gradingService.Submit(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetMyResults lists the current user's results
func (h *ResultHandler) GetMyResults(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := h.parseResultFilters(c)

	results, err := h.gradingService.GetMine(c.Request.Context(), filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetTestResults lists all results for a test; author or admin only
func (h *ResultHandler) GetTestResults(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := h.parseResultFilters(c)

	results, err := h.gradingService.GetByTest(c.Request.Context(), testID, filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ===== HELPER METHODS =====

func (h *ResultHandler) parseResultFilters(c *gin.Context) repositories.ResultFilters {
	page := 1
	size := 10

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	filters := repositories.ResultFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.DateFrom = &from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.DateTo = &to
		}
	}

	return filters
}
