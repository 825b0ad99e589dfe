package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService struct {
	bookingRepo BookingRepository
	postRepo    PostRepository
	userRepo    UserRepository
	logger      *zap.Logger
}

func NewBookingService(
	bookingRepo BookingRepository,
	postRepo PostRepository,
	userRepo UserRepository,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateBookingInput parent_id сюда не входит: он всегда берётся из поста
type CreateBookingInput struct {
	PostID         uuid.UUID
	TutorID        uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
	ContractStatus string
}

// CreateBooking создаёт бронирование: автор поста или админ
func (s *BookingService) CreateBooking(ctx context.Context, actor model.Principal, in CreateBookingInput) (*model.Booking, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}

	if !actor.IsOrAdmin(post.CreatorID) {
		return nil, forbidden("add booking to this post")
	}

	tutor, err := s.userRepo.GetByID(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil {
		return nil, notFound("tutor")
	}

	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, invalid("end_date must not precede start_date")
	}

	booking := &model.Booking{
		PostID:         post.ID,
		TutorID:        tutor.ID,
		ParentID:       post.CreatorID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		ContractStatus: model.NormalizeContractStatus(in.ContractStatus),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("post_id", booking.PostID.String()),
		zap.String("tutor_id", booking.TutorID.String()),
		zap.String("parent_id", booking.ParentID.String()),
		zap.String("contract_status", booking.ContractStatus),
	)

	return booking, nil
}

func (s *BookingService) getBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking")
	}
	return booking, nil
}

// SetStatus статус договора меняет только репетитор или родитель из бронирования
func (s *BookingService) SetStatus(ctx context.Context, actor model.Principal, id uuid.UUID, status string) (*model.Booking, error) {
	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actor.ID) {
		return nil, forbidden("update this booking")
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, invalid("contract_status is required")
	}

	err = s.bookingRepo.UpdateStatus(ctx, id, status)
	if errors.Is(err, base.ErrConditionFailed) {
		return nil, notFound("booking")
	}
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	s.logger.Info("Booking status updated",
		zap.String("booking_id", id.String()),
		zap.String("contract_status", status),
		zap.String("actor_id", actor.ID.String()),
	)

	return s.getBooking(ctx, id)
}

// ListMine бронирования, где вызывающий репетитор или родитель
func (s *BookingService) ListMine(ctx context.Context, actor model.Principal, scope model.BookingScope, page model.Page) ([]*model.Booking, error) {
	if !scope.Valid() {
		return nil, invalid("scope must be 'tutor' or 'parent'")
	}

	bookings, err := s.bookingRepo.ListByParty(ctx, scope, actor.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return nonEmpty(bookings, "bookings")
}

// ListByPost бронирования поста, только для автора поста
func (s *BookingService) ListByPost(ctx context.Context, actor model.Principal, postID uuid.UUID) ([]*model.Booking, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}
	if !actor.Is(post.CreatorID) {
		return nil, forbidden("view bookings for this post")
	}

	bookings, err := s.bookingRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by post: %w", err)
	}
	return nonEmpty(bookings, "bookings")
}
