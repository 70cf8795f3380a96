package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	auth        *SessionAuthMiddleware
}

func NewAuthHandler(authService services.AuthService, auth *SessionAuthMiddleware, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		auth:        auth,
	}
}

// Register creates an account and opens a session for it.
// Callers that already hold a live session are rejected.
func (h *AuthHandler) Register(c *gin.Context) {
	if OptionalUserFromContext(c) != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Already logged in"})
		return
	}

	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.auth.SetSessionCookie(c, resp.Session)

	c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and opens a session.
// Callers that already hold a live session are rejected.
func (h *AuthHandler) Login(c *gin.Context) {
	if OptionalUserFromContext(c) != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Already logged in"})
		return
	}

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.auth.SetSessionCookie(c, resp.Session)

	c.JSON(http.StatusOK, resp)
}

// Logout destroys the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("session_token")

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.auth.ClearSessionCookie(c)

	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

// Me returns the authenticated user's own profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp, err := h.authService.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
