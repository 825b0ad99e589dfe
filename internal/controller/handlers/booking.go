package handlers

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookings *service.BookingService
	pager    common.Pager
	logger   *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, pager common.Pager, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, pager: pager, logger: logger}
}

// AddBooking POST /api/booking/add-booking
func (h *BookingHandler) AddBooking(c *gin.Context) {
	var in struct {
		PostID         uuid.UUID  `json:"post_id"`
		TutorID        uuid.UUID  `json:"tutor_id"`
		StartDate      *time.Time `json:"start_date"`
		EndDate        *time.Time `json:"end_date"`
		ContractStatus string     `json:"contract_status"`
	}
	check := func() error {
		if err := common.RequireID(in.PostID, "post_id"); err != nil {
			return err
		}
		return common.RequireID(in.TutorID, "tutor_id")
	}
	if err := bindWithID(c, &in, check); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), mustPrincipal(c), service.CreateBookingInput{
		PostID:         in.PostID,
		TutorID:        in.TutorID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		ContractStatus: in.ContractStatus,
	})
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// UpdateStatus POST /api/booking/update-status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var in struct {
		ID             uuid.UUID `json:"id"`
		ContractStatus string    `json:"contract_status"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ID, "id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	booking, err := h.bookings.SetStatus(c.Request.Context(), mustPrincipal(c), in.ID, in.ContractStatus)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ListMine GET /api/booking/me/get-booking?scope=tutor|parent&skip=&limit=
func (h *BookingHandler) ListMine(c *gin.Context) {
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	scope := model.BookingScope(c.DefaultQuery("scope", string(model.BookingScopeParent)))
	bookings, err := h.bookings.ListMine(c.Request.Context(), mustPrincipal(c), scope, page)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// ListByPost POST /api/booking/get-booking-by-post
func (h *BookingHandler) ListByPost(c *gin.Context) {
	var in struct {
		PostID uuid.UUID `json:"post_id"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	bookings, err := h.bookings.ListByPost(c.Request.Context(), mustPrincipal(c), in.PostID)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
