package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/4brn/stddy-bddy/internal/services"
	"github.com/4brn/stddy-bddy/internal/utils"
)

type LikeHandler struct {
	BaseHandler
	likeService services.LikeService
}

func NewLikeHandler(likeService services.LikeService, logger utils.Logger) *LikeHandler {
	return &LikeHandler{
		BaseHandler: NewBaseHandler(logger),
		likeService: likeService,
	}
}

// LikeTest records the current user's like; repeats are no-ops
func (h *LikeHandler) LikeTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.likeService.Like(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test liked"})
}

// DislikeTest removes the current user's like; repeats are no-ops
func (h *LikeHandler) DislikeTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.likeService.Dislike(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test disliked"})
}

// GetLikes returns the like count and whether the current user liked the test
func (h *LikeHandler) GetLikes(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	count, err := h.likeService.Count(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	liked, err := h.likeService.Liked(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"test_id": id,
		"count":   count,
		"liked":   liked,
	})
}

// GetMyLikedTests lists the IDs of tests the current user liked
func (h *LikeHandler) GetMyLikedTests(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	ids, err := h.likeService.ListLikedTestIDs(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"test_ids": ids})
}
