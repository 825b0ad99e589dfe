package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RatingService struct {
	ratingRepo  RatingRepository
	userRepo    UserRepository
	bookingRepo BookingRepository
	logger      *zap.Logger
}

func NewRatingService(
	ratingRepo RatingRepository,
	userRepo UserRepository,
	bookingRepo BookingRepository,
	logger *zap.Logger,
) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// AddRatingInput данные новой оценки. Автор всегда вызывающий
type AddRatingInput struct {
	TutorID   uuid.UUID
	BookingID *uuid.UUID
	Rating    int
	Comment   string
}

// AddRating добавляет оценку репетитору от имени вызывающего
func (s *RatingService) AddRating(ctx context.Context, actor model.Principal, in AddRatingInput) (*model.Rating, error) {
	if !model.ValidScore(in.Rating) {
		return nil, invalid("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}

	tutor, err := s.userRepo.GetByID(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil {
		return nil, notFound("tutor")
	}

	if in.BookingID != nil {
		booking, err := s.bookingRepo.GetByID(ctx, *in.BookingID)
		if err != nil {
			return nil, fmt.Errorf("get booking: %w", err)
		}
		if booking == nil {
			return nil, notFound("booking")
		}
	}

	rating := &model.Rating{
		TutorID:   in.TutorID,
		ParentID:  actor.ID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}

	s.logger.Info("Rating added",
		zap.String("rating_id", rating.ID.String()),
		zap.String("tutor_id", rating.TutorID.String()),
		zap.String("parent_id", rating.ParentID.String()),
		zap.Int("rating", rating.Rating),
	)

	return rating, nil
}

// getOwned загружает оценку и проверяет, что вызывающий её автор
func (s *RatingService) getOwned(ctx context.Context, actor model.Principal, id uuid.UUID, action string) (*model.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	if rating == nil {
		return nil, notFound("rating")
	}
	// Админ здесь не исключение
	if !actor.Is(rating.ParentID) {
		return nil, forbidden(action)
	}
	return rating, nil
}

// UpdateRating меняет оценку и/или комментарий. nil = не менять
func (s *RatingService) UpdateRating(ctx context.Context, actor model.Principal, id uuid.UUID, score *int, comment *string) (*model.Rating, error) {
	rating, err := s.getOwned(ctx, actor, id, "update this rating")
	if err != nil {
		return nil, err
	}

	if score == nil && comment == nil {
		return nil, invalid("no fields to update")
	}
	if score != nil {
		if !model.ValidScore(*score) {
			return nil, invalid("rating must be between %d and %d", model.MinRating, model.MaxRating)
		}
		rating.Rating = *score
	}
	if comment != nil {
		rating.Comment = *comment
	}

	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}

	s.logger.Info("Rating updated",
		zap.String("rating_id", rating.ID.String()),
		zap.Int("rating", rating.Rating),
	)

	return rating, nil
}

// DeleteRating удаляет оценку автора
func (s *RatingService) DeleteRating(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	rating, err := s.getOwned(ctx, actor, id, "delete this rating")
	if err != nil {
		return err
	}

	if err := s.ratingRepo.Delete(ctx, rating.ID); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	s.logger.Info("Rating deleted", zap.String("rating_id", rating.ID.String()))
	return nil
}

func (s *RatingService) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Rating, error) {
	ratings, err := s.ratingRepo.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	if ratings == nil {
		ratings = []*model.Rating{}
	}
	return ratings, nil
}

// Stats считается при каждом запросе, без кэша
func (s *RatingService) Stats(ctx context.Context, tutorID uuid.UUID) (model.RatingStats, error) {
	totals, err := s.ratingRepo.Totals(ctx, tutorID)
	if err != nil {
		return model.RatingStats{}, fmt.Errorf("rating stats: %w", err)
	}
	return totals.Stats(), nil
}
