package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/models"
	"github.com/4brn/stddy-bddy/internal/repositories"
	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	testHandler     *TestHandler
	likeHandler     *LikeHandler
	resultHandler   *ResultHandler
	categoryHandler *CategoryHandler
	userHandler     *UserHandler
	authMiddleware  *SessionAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	userRepo repositories.UserRepository,
	secureCookies bool,
) *HandlerManager {
	authMiddleware := NewSessionAuthMiddleware(serviceManager.Session(), userRepo, secureCookies)

	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), authMiddleware, logger),
		testHandler:     NewTestHandler(serviceManager.Test(), logger),
		likeHandler:     NewLikeHandler(serviceManager.Like(), logger),
		resultHandler:   NewResultHandler(serviceManager.Grading(), logger),
		categoryHandler: NewCategoryHandler(serviceManager.Category(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), serviceManager.Export(), logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes; register and login open a session themselves
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authMiddleware.OptionalAuthMiddleware(), hm.authHandler.Register)
			auth.POST("/login", hm.authMiddleware.OptionalAuthMiddleware(), hm.authHandler.Login)
			auth.POST("/logout", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Logout)
			auth.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
		}

		// Test routes; reading works anonymously for public tests
		tests := v1.Group("/tests")
		{
			tests.GET("", hm.authMiddleware.OptionalAuthMiddleware(), hm.testHandler.ListTests)
			tests.GET("/:id", hm.authMiddleware.OptionalAuthMiddleware(), hm.testHandler.GetTest)
			tests.GET("/author/:author_id", hm.authMiddleware.OptionalAuthMiddleware(), hm.testHandler.GetTestsByAuthor)

			authed := tests.Group("")
			authed.Use(hm.authMiddleware.AuthMiddleware())
			{
				authed.POST("", hm.testHandler.CreateTest)
				authed.PUT("/:id", hm.testHandler.UpdateTest)
				authed.DELETE("/:id", hm.testHandler.DeleteTest)
				authed.GET("/mine", hm.testHandler.GetMyTests)

				// Likes
				authed.POST("/:id/like", hm.likeHandler.LikeTest)
				authed.POST("/:id/dislike", hm.likeHandler.DislikeTest)
				authed.GET("/:id/likes", hm.likeHandler.GetLikes)

				// Results for a test; author or admin only, enforced in the service
				authed.GET("/:id/results", hm.resultHandler.GetTestResults)
			}
		}

		// Result routes
		results := v1.Group("/results")
		results.Use(hm.authMiddleware.AuthMiddleware())
		{
			results.POST("", hm.resultHandler.SubmitResult)
			results.GET("/mine", hm.resultHandler.GetMyResults)
		}

		// Liked tests of the current user
		v1.GET("/likes/mine", hm.authMiddleware.AuthMiddleware(), hm.likeHandler.GetMyLikedTests)

		// Category routes; listing needs a session, mutation is admin only
		categories := v1.Group("/categories")
		{
			categories.GET("", hm.authMiddleware.AuthMiddleware(), hm.categoryHandler.ListCategories)

			admin := categories.Group("")
			admin.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
			{
				admin.POST("", hm.categoryHandler.CreateCategory)
				admin.PUT("/:id", hm.categoryHandler.UpdateCategory)
				admin.DELETE("/:id", hm.categoryHandler.DeleteCategory)
			}
		}

		// User management routes
		users := v1.Group("/users")
		users.Use(hm.authMiddleware.AuthMiddleware())
		{
			users.GET("/:id", hm.userHandler.GetUser)

			admin := users.Group("")
			admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
			{
				admin.GET("", hm.userHandler.ListUsers)
				admin.POST("", hm.userHandler.CreateUser)
				admin.PUT("/:id", hm.userHandler.UpdateUser)
				admin.DELETE("/:id", hm.userHandler.DeleteUser)
				admin.POST("/:id/force-logout", hm.userHandler.ForceLogout)
				admin.GET("/export/results", hm.userHandler.ExportResults)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "stddy-bddy",
		})
	})
}
