package memory

import (
	"context"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

type BookingRepository struct {
	s *Store
}

func cloneBooking(b model.Booking) *model.Booking {
	if b.StartDate != nil {
		v := *b.StartDate
		b.StartDate = &v
	}
	if b.EndDate != nil {
		v := *b.EndDate
		b.EndDate = &v
	}
	return &b
}

func (r *BookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = r.s.now()
	booking.UpdatedAt = booking.CreatedAt

	r.s.bookings[booking.ID] = &row[model.Booking]{v: *cloneBooking(*booking), seq: r.s.nextSeq()}
	return nil
}

func (r *BookingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if b, ok := r.s.bookings[id]; ok {
		return cloneBooking(b.v), nil
	}
	return nil, nil
}

func (r *BookingRepository) ListByParty(_ context.Context, scope model.BookingScope, userID uuid.UUID, page model.Page) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match := func(b *model.Booking) bool {
		if scope == model.BookingScopeParent {
			return b.ParentID == userID
		}
		return b.TutorID == userID
	}

	return bookingsFrom(collect(r.s.bookings, match, true, page)), nil
}

func (r *BookingRepository) ListByPost(_ context.Context, postID uuid.UUID) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := collect(r.s.bookings, func(b *model.Booking) bool { return b.PostID == postID }, true, model.Page{})
	return bookingsFrom(rows), nil
}

func bookingsFrom(rows []*row[model.Booking]) []*model.Booking {
	bookings := make([]*model.Booking, 0, len(rows))
	for _, b := range rows {
		bookings = append(bookings, cloneBooking(b.v))
	}
	return bookings
}

func (r *BookingRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return conditionFailed("update booking status")
	}
	b.v.ContractStatus = status
	b.v.UpdatedAt = r.s.now()
	return nil
}
