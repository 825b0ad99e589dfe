package handlers

import (
	"net/http"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users  *service.UserService
	pager  common.Pager
	logger *zap.Logger
}

func NewAuthHandler(users *service.UserService, pager common.Pager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, pager: pager, logger: logger}
}

// Login POST /api/auth/login, принимает form и JSON
func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&in); err != nil {
		common.WriteError(c, h.logger, common.BadRequest(err))
		return
	}

	token, err := h.users.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GetProfile GET /api/auth/me/get-profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor := mustPrincipal(c)

	profile, err := h.users.Profile(c.Request.Context(), actor)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfileByUserID POST /api/auth/get-profile-by-user-id
func (h *AuthHandler) GetProfileByUserID(c *gin.Context) {
	var in struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.UserID, "user_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	profile, err := h.users.PublicProfile(c.Request.Context(), in.UserID)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile POST /api/auth/me/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var in struct {
		Email       *string  `json:"email"`
		Phone       *string  `json:"phone"`
		DisplayName *string  `json:"display_name"`
		Subjects    []string `json:"subjects"`
		Levels      []string `json:"levels"`
		Gender      *string  `json:"gender"`
		Address     *string  `json:"address"`
		Bio         *string  `json:"bio"`
		TelegramID  *int64   `json:"telegram_id"`
	}
	if err := common.BindJSON(c, &in); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), mustPrincipal(c), model.ProfileUpdate{
		Email:       in.Email,
		Phone:       in.Phone,
		DisplayName: in.DisplayName,
		Subjects:    in.Subjects,
		Levels:      in.Levels,
		Gender:      in.Gender,
		Address:     in.Address,
		Bio:         in.Bio,
		TelegramID:  in.TelegramID,
	})
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RequestVerification POST /api/auth/me/request-profile-verification
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	if err := h.users.RequestVerification(c.Request.Context(), mustPrincipal(c)); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification requested", "status": model.UserStatusPending})
}

// UpdateProfileStatus POST /api/auth/admin/update-profile-status
func (h *AuthHandler) UpdateProfileStatus(c *gin.Context) {
	var in struct {
		UserID uuid.UUID `json:"user_id"`
		Status string    `json:"status"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.UserID, "user_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	status := model.UserStatus(in.Status)
	if err := h.users.SetStatus(c.Request.Context(), mustPrincipal(c), in.UserID, status); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": in.UserID, "status": status})
}

// ListProfilesByStatus POST /api/auth/get-profiles-by-status?skip=&limit=
func (h *AuthHandler) ListProfilesByStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if err := common.BindJSON(c, &in); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	profiles, err := h.users.ListByStatus(c.Request.Context(), mustPrincipal(c), model.UserStatus(in.Status), page)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
