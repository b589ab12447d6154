package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/pkg/response"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type postRequest struct {
	Content   string   `json:"content" binding:"required,max=5000"`
	ImageURLs []string `json:"image_urls" binding:"omitempty,max=10,dive,url"`
	IsPublic  *bool    `json:"is_public"`
}

// input defaults visibility to public when the field is absent.
func (r postRequest) input() application.PostInput {
	public := true
	if r.IsPublic != nil {
		public = *r.IsPublic
	}
	return application.PostInput{Content: r.Content, ImageURLs: r.ImageURLs, IsPublic: public}
}

type visibilityRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPostResponse(p), "post created", nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), currentUser(c), c.Param("id"), req.input())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p), "post updated", nil)
}

func (h *PostHandler) UpdateVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdateVisibility(c.Request.Context(), currentUser(c), c.Param("id"), *req.IsPublic)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p), "visibility updated", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post deleted", nil)
}

func (h *PostHandler) ListMine(c *gin.Context) {
	posts, err := h.Svc.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponses(posts), "my posts", map[string]any{"count": len(posts)})
}

// ListPublic serves GET /posts/public?limit=50
func (h *PostHandler) ListPublic(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	posts, err := h.Svc.ListPublic(c.Request.Context(), limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPostResponses(posts), "public posts", map[string]any{"count": len(posts)})
}

func (h *PostHandler) UploadImage(c *gin.Context) {
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

	url, err := h.Svc.UploadImage(c.Request.Context(), currentUser(c), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url}, "image uploaded", nil)
}
