package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type CategoryHandler struct {
	BaseHandler
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService, logger utils.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     NewBaseHandler(logger),
		categoryService: categoryService,
	}
}

// ListCategories lists all categories; open to any authenticated user
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory creates a category; admin only
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
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

	category, err := h.categoryService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory renames a category; admin only
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCategoryRequest
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

	category, err := h.categoryService.Update(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category; admin only
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
