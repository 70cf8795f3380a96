package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// CreateTest creates a new test authored by the current user
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
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

	test, err := h.testService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest retrieves a test by ID
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting test", "test_id", id)

	test, err := h.testService.GetByID(c.Request.Context(), id, OptionalUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// UpdateTest updates an existing test
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating test", "test_id", id)

	var req services.UpdateTestRequest
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

	test, err := h.testService.Update(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest deletes a test
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTests lists tests visible to the current user
func (h *TestHandler) ListTests(c *gin.Context) {
	h.LogRequest(c, "Listing tests")

	filters := h.parseTestFilters(c)

	tests, err := h.testService.List(c.Request.Context(), filters, OptionalUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetMyTests lists the current user's own tests
func (h *TestHandler) GetMyTests(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := h.parseTestFilters(c)

	tests, err := h.testService.GetByAuthor(c.Request.Context(), user.ID, filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetTestsByAuthor lists a given author's tests visible to the current user
func (h *TestHandler) GetTestsByAuthor(c *gin.Context) {
	authorID := h.parseIDParam(c, "author_id")
	if authorID == 0 {
		return
	}

	filters := h.parseTestFilters(c)

	tests, err := h.testService.GetByAuthor(c.Request.Context(), authorID, filters, OptionalUserFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// ===== HELPER METHODS =====

func (h *TestHandler) parseTestFilters(c *gin.Context) repositories.TestFilters {
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

	filters := repositories.TestFilters{
		Search:    c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     size,
		Offset:    (page - 1) * size,
	}

	if categoryStr := c.Query("category_id"); categoryStr != "" {
		if id, err := strconv.ParseUint(categoryStr, 10, 32); err == nil {
			categoryID := uint(id)
			filters.CategoryID = &categoryID
		}
	}

	return filters
}
