package memory

import (
	"context"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

// TransactionRepository записи только добавляются
type TransactionRepository struct {
	s *Store
}

func (r *TransactionRepository) Create(_ context.Context, tx *model.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = r.s.now()

	r.s.transactions[tx.ID] = &row[model.Transaction]{v: *tx, seq: r.s.nextSeq()}
	return nil
}

func (r *TransactionRepository) ListByPayer(_ context.Context, payerID uuid.UUID, status string, page model.Page) ([]*model.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match := func(t *model.Transaction) bool {
		return t.PayerID == payerID && (status == "" || t.TransactionStatus == status)
	}

	rows := collect(r.s.transactions, match, true, page)
	txs := make([]*model.Transaction, 0, len(rows))
	for _, t := range rows {
		tx := t.v
		txs = append(txs, &tx)
	}
	return txs, nil
}

type RatingRepository struct {
	s *Store
}

func cloneRating(r model.Rating) *model.Rating {
	if r.BookingID != nil {
		v := *r.BookingID
		r.BookingID = &v
	}
	return &r
}

func (r *RatingRepository) Create(_ context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	rating.RatedAt = r.s.now()

	r.s.ratings[rating.ID] = &row[model.Rating]{v: *cloneRating(*rating), seq: r.s.nextSeq()}
	return nil
}

func (r *RatingRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if rt, ok := r.s.ratings[id]; ok {
		return cloneRating(rt.v), nil
	}
	return nil, nil
}

func (r *RatingRepository) Update(_ context.Context, rating *model.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rt, ok := r.s.ratings[rating.ID]
	if !ok {
		return conditionFailed("update rating")
	}
	rt.v.Rating = rating.Rating
	rt.v.Comment = rating.Comment
	return nil
}

func (r *RatingRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.ratings[id]; !ok {
		return conditionFailed("delete rating")
	}
	delete(r.s.ratings, id)
	return nil
}

func (r *RatingRepository) ListByTutor(_ context.Context, tutorID uuid.UUID) ([]*model.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := collect(r.s.ratings, func(rt *model.Rating) bool { return rt.TutorID == tutorID }, true, model.Page{})
	ratings := make([]*model.Rating, 0, len(rows))
	for _, rt := range rows {
		ratings = append(ratings, cloneRating(rt.v))
	}
	return ratings, nil
}

func (r *RatingRepository) Totals(_ context.Context, tutorID uuid.UUID) (model.RatingTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var totals model.RatingTotals
	for _, rt := range r.s.ratings {
		if rt.v.TutorID == tutorID {
			totals.Sum += int64(rt.v.Rating)
			totals.Count++
		}
	}
	return totals, nil
}
