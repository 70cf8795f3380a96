package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService   services.UserService
	exportService services.ExportService
}

func NewUserHandler(userService services.UserService, exportService services.ExportService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:   NewBaseHandler(logger),
		userService:   userService,
		exportService: exportService,
	}
}

// CreateUser creates an account with an explicit role; admin only
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
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

	created, err := h.userService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetUser retrieves a user by ID; admin or the user themselves
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp, err := h.userService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateUser updates an account; admin only
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating user", "target_id", id)

	var req services.UpdateUserRequest
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

	resp, err := h.userService.Update(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteUser deletes an account and its sessions; admin only
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting user", "target_id", id)

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers lists accounts; admin only
func (h *UserHandler) ListUsers(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := h.parseUserFilters(c)

	users, err := h.userService.List(c.Request.Context(), filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ForceLogout destroys every open session of the target user; admin only
func (h *UserHandler) ForceLogout(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.userService.ForceLogout(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "All sessions destroyed"})
}

// ExportResults streams an xlsx workbook of results; admin only
func (h *UserHandler) ExportResults(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := repositories.ResultFilters{}
	if testStr := c.Query("test_id"); testStr != "" {
		if id, err := strconv.ParseUint(testStr, 10, 32); err == nil {
			testID := uint(id)
			filters.TestID = &testID
		}
	}
	if userStr := c.Query("user_id"); userStr != "" {
		if id, err := strconv.ParseUint(userStr, 10, 32); err == nil {
			userID := uint(id)
			filters.UserID = &userID
		}
	}

	filename := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exportService.ExportResults(c.Request.Context(), filters, user, c.Writer); err != nil {
		h.handleServiceError(c, err)
		return
	}
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
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

	filters := repositories.UserFilters{
		Search: c.Query("q"),
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}

	return filters
}
