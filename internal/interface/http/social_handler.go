package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

// SocialHandler exposes the follow graph. The acting user is always the
// authenticated caller; :id names the other side of the edge.
type SocialHandler struct {
	Graph  *application.SocialGraphService
	Logger *logrus.Logger
}

func NewSocialHandler(graph *application.SocialGraphService, logger *logrus.Logger) *SocialHandler {
	return &SocialHandler{Graph: graph, Logger: logger}
}

func (h *SocialHandler) Follow(c *gin.Context) {
	u, err := h.Graph.Follow(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "followed", nil)
}

func (h *SocialHandler) Unfollow(c *gin.Context) {
	u, err := h.Graph.Unfollow(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "unfollowed", nil)
}

// IsFollowing answers whether :id follows :targetId.
func (h *SocialHandler) IsFollowing(c *gin.Context) {
	ok, err := h.Graph.IsFollowing(c.Request.Context(), c.Param("id"), c.Param("targetId"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_following": ok}, "is following", nil)
}

func (h *SocialHandler) Followers(c *gin.Context) {
	views, err := h.Graph.ListFollowers(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "followers", map[string]any{"count": len(views)})
}

func (h *SocialHandler) Following(c *gin.Context) {
	views, err := h.Graph.ListFollowing(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "following", map[string]any{"count": len(views)})
}
