package handlers

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts  *service.PostService
	pager  common.Pager
	logger *zap.Logger
}

func NewPostHandler(posts *service.PostService, pager common.Pager, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, pager: pager, logger: logger}
}

// AddPost POST /api/post/add-post
func (h *PostHandler) AddPost(c *gin.Context) {
	var in struct {
		Title             string           `json:"title"`
		Subject           string           `json:"subject"`
		Level             string           `json:"level"`
		Address           string           `json:"address"`
		SalaryAmount      *decimal.Decimal `json:"salary_amount"`
		SessionsPerWeek   *int             `json:"sessions_per_week"`
		MinutesPerSession *int             `json:"minutes_per_session"`
		PreferredTimes    string           `json:"preferred_times"`
		StudentInfo       string           `json:"student_info"`
		Requirements      string           `json:"requirements"`
		Mode              string           `json:"mode"`
	}
	if err := common.BindJSON(c, &in); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), mustPrincipal(c), &model.Post{
		Title:             in.Title,
		Subject:           in.Subject,
		Level:             in.Level,
		Address:           in.Address,
		SalaryAmount:      in.SalaryAmount,
		SessionsPerWeek:   in.SessionsPerWeek,
		MinutesPerSession: in.MinutesPerSession,
		PreferredTimes:    in.PreferredTimes,
		StudentInfo:       in.StudentInfo,
		Requirements:      in.Requirements,
		Mode:              in.Mode,
	})
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost POST /api/post/delete-post
func (h *PostHandler) DeletePost(c *gin.Context) {
	var in struct {
		PostID uuid.UUID `json:"post_id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), mustPrincipal(c), in.PostID); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted", "post_id": in.PostID})
}

// UpdateStatus POST /api/post/update-status
func (h *PostHandler) UpdateStatus(c *gin.Context) {
	var in struct {
		PostID     uuid.UUID `json:"post_id"`
		PostStatus string    `json:"post_status"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	status := model.PostStatus(strings.ToLower(strings.TrimSpace(in.PostStatus)))
	post, err := h.posts.SetStatus(c.Request.Context(), mustPrincipal(c), in.PostID, status)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts GET /api/post/get-post?scope=me|all&subject=&level=&mode=&address=&skip=&limit=
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	scope := service.PostScope(c.DefaultQuery("scope", string(service.PostScopeAll)))
	filter := model.PostFilter{
		Subject: blankQuery(c.QueryArray("subject")),
		Level:   blankQuery(c.QueryArray("level")),
		Mode:    blankQuery(c.QueryArray("mode")),
		Address: strings.TrimSpace(c.Query("address")),
		Page:    page,
	}

	posts, err := h.posts.ListPosts(c.Request.Context(), mustPrincipal(c), scope, filter)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost GET /api/post/:post_id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := common.ParseID(c.Param("post_id"), "post_id")
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
