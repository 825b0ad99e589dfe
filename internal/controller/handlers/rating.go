package handlers

import (
	"net/http"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RatingHandler struct {
	ratings *service.RatingService
	logger  *zap.Logger
}

func NewRatingHandler(ratings *service.RatingService, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{ratings: ratings, logger: logger}
}

// AddRating POST /api/rating/add-rating
func (h *RatingHandler) AddRating(c *gin.Context) {
	var in struct {
		TutorID   uuid.UUID  `json:"tutor_id"`
		BookingID *uuid.UUID `json:"booking_id"`
		Rating    int        `json:"rating"`
		Comment   string     `json:"comment"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.TutorID, "tutor_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	if in.BookingID != nil && *in.BookingID == uuid.Nil {
		in.BookingID = nil
	}

	rating, err := h.ratings.AddRating(c.Request.Context(), mustPrincipal(c), service.AddRatingInput{
		TutorID:   in.TutorID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// UpdateRating POST /api/rating/update-rating
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	var in struct {
		ID      uuid.UUID `json:"id"`
		Rating  *int      `json:"rating"`
		Comment *string   `json:"comment"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ID, "id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	rating, err := h.ratings.UpdateRating(c.Request.Context(), mustPrincipal(c), in.ID, in.Rating, in.Comment)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// DeleteRating POST /api/rating/delete-rating
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	var in struct {
		ID uuid.UUID `json:"id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ID, "id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	if err := h.ratings.DeleteRating(c.Request.Context(), mustPrincipal(c), in.ID); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating deleted", "id": in.ID})
}

// ListByTutor GET /api/rating/tutor/:tutor_id/ratings, без авторизации
func (h *RatingHandler) ListByTutor(c *gin.Context) {
	tutorID, err := common.ParseID(c.Param("tutor_id"), "tutor_id")
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	ratings, err := h.ratings.ListByTutor(c.Request.Context(), tutorID)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}
