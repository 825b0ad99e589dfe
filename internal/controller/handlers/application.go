package handlers

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
	pager        common.Pager
	logger       *zap.Logger
}

func NewApplicationHandler(applications *service.ApplicationService, pager common.Pager, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, pager: pager, logger: logger}
}

// AddApplication POST /api/application/add-application
func (h *ApplicationHandler) AddApplication(c *gin.Context) {
	var in struct {
		PostID uuid.UUID `json:"post_id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	app, err := h.applications.Apply(c.Request.Context(), mustPrincipal(c), in.PostID)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// DeleteApplication POST /api/application/delete-application
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	var in struct {
		ID uuid.UUID `json:"id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ID, "id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	if err := h.applications.Delete(c.Request.Context(), mustPrincipal(c), in.ID); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application deleted", "id": in.ID})
}

// UpdateStatus POST /api/application/update-status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var in struct {
		ID                uuid.UUID `json:"id"`
		ApplicationStatus string    `json:"application_status"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ID, "id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	app, err := h.applications.SetStatus(c.Request.Context(), mustPrincipal(c), in.ID, in.ApplicationStatus)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ListMine GET /api/application/me/get-application?skip=&limit=
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	apps, err := h.applications.ListMine(c.Request.Context(), mustPrincipal(c), page)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// ListByPost POST /api/application/get-application-by-post?application_status=&skip=&limit=
func (h *ApplicationHandler) ListByPost(c *gin.Context) {
	var in struct {
		PostID uuid.UUID `json:"post_id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	var statuses []model.ApplicationStatus
	for _, raw := range blankQuery(c.QueryArray("application_status")) {
		statuses = append(statuses, model.ApplicationStatus(strings.ToLower(strings.TrimSpace(raw))))
	}

	apps, err := h.applications.ListByPost(c.Request.Context(), in.PostID, statuses, page)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}
