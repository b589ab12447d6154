package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/pkg/response"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type skillRequest struct {
	Sport     string `json:"sport" binding:"required,sport"`
	SkillName string `json:"skill_name" binding:"required,max=64"`
}

// updateProfileRequest leaves fields that are absent from the body untouched.
type updateProfileRequest struct {
	Username  *string         `json:"username" binding:"omitempty,username"`
	PhoneNo   *string         `json:"phone_no" binding:"omitempty,max=32"`
	Address   *string         `json:"address" binding:"omitempty,max=255"`
	Education *string         `json:"education" binding:"omitempty,max=255"`
	Skills    *[]skillRequest `json:"skills" binding:"omitempty,max=50,dive"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.UpdateProfileInput{
		Username:  req.Username,
		PhoneNo:   req.PhoneNo,
		Address:   req.Address,
		Education: req.Education,
	}
	if req.Skills != nil {
		in.Skills = make([]entity.Skill, 0, len(*req.Skills))
		for _, s := range *req.Skills {
			in.Skills = append(in.Skills, entity.Skill{Sport: s.Sport, SkillName: s.SkillName})
		}
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

// UploadAvatar expects a multipart form with the image in the "file" field.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer f.Close()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), currentUser(c), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"photo_url": url}, "profile picture updated", nil)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	view, err := h.Svc.GetUserProfile(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, view, "user", nil)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	views, err := h.Svc.ListUsers(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "users", map[string]any{"count": len(views)})
}

// Search queries the user index: GET /users/search?q=...&size=10
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	views, err := h.Svc.SearchUsers(c.Request.Context(), q, size, currentUser(c))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("q", q).Warn("user search failed")
		}
		response.Error[any](c, http.StatusServiceUnavailable, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, views, "search results", map[string]any{"count": len(views)})
}
