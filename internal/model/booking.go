package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultContractStatus статус договора, если клиент ничего не прислал
const DefaultContractStatus = "accepted"

// contractPlaceholder значение-заглушка, которое присылают сгенерированные клиенты
const contractPlaceholder = "string"

type Booking struct {
	ID             uuid.UUID  `json:"id"`
	PostID         uuid.UUID  `json:"post_id"`
	TutorID        uuid.UUID  `json:"tutor_id"`
	ParentID       uuid.UUID  `json:"parent_id"` // всегда creator_id поста
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	ContractStatus string     `json:"contract_status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsParty checks if user is named on the booking
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.TutorID == userID || b.ParentID == userID
}

// NormalizeContractStatus подставляет статус по умолчанию для пустого значения или заглушки
func NormalizeContractStatus(status string) string {
	s := strings.TrimSpace(status)
	if s == "" || strings.EqualFold(s, contractPlaceholder) {
		return DefaultContractStatus
	}
	return s
}

// BookingScope чья сторона бронирования запрашивается
type BookingScope string

const (
	BookingScopeTutor  BookingScope = "tutor"
	BookingScopeParent BookingScope = "parent"
)

// Valid проверяет scope
func (s BookingScope) Valid() bool {
	return s == BookingScopeTutor || s == BookingScopeParent
}
