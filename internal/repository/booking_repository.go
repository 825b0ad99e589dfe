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

const bookingColumns = `id, post_id, tutor_id, parent_id, start_date, end_date, contract_status, created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.PostID,
		&booking.TutorID,
		&booking.ParentID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.ContractStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) list(ctx context.Context, what, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, post_id, tutor_id, parent_id, start_date, end_date, contract_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	err := r.QueryRow(
		ctx, query,
		booking.ID,
		booking.PostID,
		booking.TutorID,
		booking.ParentID,
		booking.StartDate,
		booking.EndDate,
		booking.ContractStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// ListByParty получает бронирования, где пользователь репетитор или родитель
func (r *BookingRepository) ListByParty(ctx context.Context, scope model.BookingScope, userID uuid.UUID, page model.Page) ([]*model.Booking, error) {
	column := "tutor_id"
	if scope == model.BookingScopeParent {
		column = "parent_id"
	}

	query, args := base.Paginate(
		`SELECT `+bookingColumns+` FROM bookings WHERE `+column+` = $1 ORDER BY created_at DESC`,
		[]interface{}{userID}, page,
	)
	return r.list(ctx, "list bookings by "+string(scope), query, args...)
}

// ListByPost получает все бронирования поста
func (r *BookingRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE post_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, "list bookings by post", query, postID)
}

// UpdateStatus обновляет статус договора
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE bookings
		SET contract_status = $1, updated_at = now()
		WHERE id = $2
	`
	return r.ExecOne(ctx, "update booking status", query, status, id)
}
