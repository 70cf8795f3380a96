package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/services"
)

const SessionCookieName = "session"

// SessionAuthMiddleware authenticates requests from the session cookie
type SessionAuthMiddleware struct {
	sessions services.SessionService
	userRepo repositories.UserRepository
	secure   bool
}

func NewSessionAuthMiddleware(sessions services.SessionService, userRepo repositories.UserRepository, secure bool) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		sessions: sessions,
		userRepo: userRepo,
		secure:   secure,
	}
}

// SetSessionCookie writes the session cookie mirroring the session's expiry.
// The token never reaches script-readable storage.
func (sam *SessionAuthMiddleware) SetSessionCookie(c *gin.Context, session *models.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, session.Token, maxAge, "/", "", sam.secure, true)
}

// ClearSessionCookie removes the session cookie from the browser
func (sam *SessionAuthMiddleware) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", sam.secure, true)
}

// AuthMiddleware validates the session cookie and loads the acting user.
// A missing cookie and an invalid or expired token are treated identically.
// Validation may slide the session's expiry, so the cookie is re-issued on
// every authenticated request to keep the browser in sync.
func (sam *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			sam.unauthorized(c)
			return
		}

		session, err := sam.sessions.Validate(c.Request.Context(), token)
		if err != nil {
			sam.ClearSessionCookie(c)
			sam.unauthorized(c)
			return
		}

		user, err := sam.userRepo.GetByID(c.Request.Context(), nil, session.UserID)
		if err != nil {
			sam.ClearSessionCookie(c)
			sam.unauthorized(c)
			return
		}

		sam.SetSessionCookie(c, session)

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("session_token", session.Token)

		c.Next()
	}
}

// OptionalAuthMiddleware loads the user when a valid session cookie is
// present, and continues anonymously otherwise
func (sam *SessionAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := sam.sessions.Validate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		if user, err := sam.userRepo.GetByID(c.Request.Context(), nil, session.UserID); err == nil {
			sam.SetSessionCookie(c, session)
			c.Set("user_id", user.ID)
			c.Set("user", user)
			c.Set("user_role", user.Role)
			c.Set("session_token", session.Token)
		}

		c.Next()
	}
}

// RequireRoleMiddleware checks if the user has one of the required roles
func (sam *SessionAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "user role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "invalid user role format",
			})
			c.Abort()
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "insufficient permissions",
		})
		c.Abort()
	}
}

func (sam *SessionAuthMiddleware) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Message: "Not authenticated",
	})
	c.Abort()
}

// GetUserFromContext extracts the acting user from the Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, services.ErrSessionNotFound
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, services.ErrSessionNotFound
	}

	return userModel, nil
}

// OptionalUserFromContext returns the acting user or nil for anonymous requests
func OptionalUserFromContext(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil
	}
	return user
}
