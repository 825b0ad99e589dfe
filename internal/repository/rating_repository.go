package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ratingColumns = `id, tutor_id, parent_id, booking_id, rating, comment, rated_at`

type RatingRepository struct {
	*base.Repository
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{Repository: base.NewRepository(pool)}
}

func scanRating(row pgx.Row) (*model.Rating, error) {
	var rating model.Rating
	err := row.Scan(
		&rating.ID,
		&rating.TutorID,
		&rating.ParentID,
		&rating.BookingID,
		&rating.Rating,
		&rating.Comment,
		&rating.RatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Create создаёт оценку
func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	query := `
		INSERT INTO ratings (id, tutor_id, parent_id, booking_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING rated_at
	`

	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}

	err := r.QueryRow(
		ctx, query,
		rating.ID,
		rating.TutorID,
		rating.ParentID,
		rating.BookingID,
		rating.Rating,
		rating.Comment,
	).Scan(&rating.RatedAt)

	if err != nil {
		return fmt.Errorf("create rating: %w", err)
	}

	return nil
}

// GetByID получает оценку по ID
func (r *RatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE id = $1`

	rating, err := scanRating(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating by id: %w", err)
	}

	return rating, nil
}

// Update обновляет оценку и комментарий
func (r *RatingRepository) Update(ctx context.Context, rating *model.Rating) error {
	query := `UPDATE ratings SET rating = $1, comment = $2 WHERE id = $3`
	return r.ExecOne(ctx, "update rating", query, rating.Rating, rating.Comment, rating.ID)
}

// Delete удаляет оценку
func (r *RatingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.ExecOne(ctx, "delete rating", `DELETE FROM ratings WHERE id = $1`, id)
}

// ListByTutor получает оценки репетитора, новые первыми
func (r *RatingRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE tutor_id = $1 ORDER BY rated_at DESC`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by tutor: %w", err)
	}
	defer rows.Close()

	var ratings []*model.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return ratings, nil
}

// Totals возвращает сумму и количество оценок репетитора
func (r *RatingRepository) Totals(ctx context.Context, tutorID uuid.UUID) (model.RatingTotals, error) {
	query := `SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM ratings WHERE tutor_id = $1`

	var totals model.RatingTotals
	if err := r.QueryRow(ctx, query, tutorID).Scan(&totals.Sum, &totals.Count); err != nil {
		return model.RatingTotals{}, fmt.Errorf("rating totals: %w", err)
	}

	return totals, nil
}
