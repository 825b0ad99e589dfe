package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ValidScore checks that score is within [MinRating, MaxRating]
func ValidScore(score int) bool {
	return score >= MinRating && score <= MaxRating
}

type Rating struct {
	ID        uuid.UUID  `json:"id"`
	TutorID   uuid.UUID  `json:"tutor_id"`
	ParentID  uuid.UUID  `json:"parent_id"` // автор, только он может менять/удалять
	BookingID *uuid.UUID `json:"booking_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	RatedAt   time.Time  `json:"rated_at"`
}

// RatingTotals сырые агрегаты из хранилища
type RatingTotals struct {
	Sum   int64
	Count int64
}

// RatingStats агрегат по репетитору. Average = nil, если оценок нет
type RatingStats struct {
	Average *decimal.Decimal `json:"avg_rating"`
	Count   int64            `json:"rating_count"`
}

// Stats считает среднее, округлённое до 2 знаков
func (t RatingTotals) Stats() RatingStats {
	if t.Count == 0 {
		return RatingStats{}
	}
	avg := decimal.NewFromInt(t.Sum).DivRound(decimal.NewFromInt(t.Count), 2)
	return RatingStats{Average: &avg, Count: t.Count}
}
