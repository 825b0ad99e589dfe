package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// UserStatus статус верификации профиля
type UserStatus string

const (
	UserStatusUnverified UserStatus = "unverified"
	UserStatusPending    UserStatus = "pending"
	UserStatusRejected   UserStatus = "rejected"
	UserStatusAccepted   UserStatus = "accepted"
)

// Valid проверяет что статус из допустимого набора
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusUnverified, UserStatusPending, UserStatusRejected, UserStatusAccepted:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	PasswordHash string          `json:"-"`
	DisplayName  string          `json:"display_name,omitempty"`
	Subjects     []string        `json:"subjects,omitempty"`
	Levels       []string        `json:"levels,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Address      string          `json:"address,omitempty"`
	Bio          string          `json:"bio,omitempty"`
	Role         Role            `json:"role"`
	Status       UserStatus      `json:"status"`
	Balance      decimal.Decimal `json:"balance"`     // меняется только через ledger
	TelegramID   *int64          `json:"telegram_id"` // чат для уведомлений, может быть nil
	CreatedAt    time.Time       `json:"created_at"`
}

// Principal возвращает идентичность пользователя для проверок доступа
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, Status: u.Status}
}

// ProfileUpdate набор изменяемых полей профиля, nil = не менять
type ProfileUpdate struct {
	Email       *string
	Phone       *string
	DisplayName *string
	Subjects    []string
	Levels      []string
	Gender      *string
	Address     *string
	Bio         *string
	TelegramID  *int64
}

// IsEmpty true если ни одно поле не задано
func (p ProfileUpdate) IsEmpty() bool {
	return p.Email == nil && p.Phone == nil && p.DisplayName == nil &&
		p.Subjects == nil && p.Levels == nil && p.Gender == nil &&
		p.Address == nil && p.Bio == nil && p.TelegramID == nil
}

// Apply применяет изменения к пользователю
func (p ProfileUpdate) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Subjects != nil {
		u.Subjects = p.Subjects
	}
	if p.Levels != nil {
		u.Levels = p.Levels
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.TelegramID != nil {
		id := *p.TelegramID
		u.TelegramID = &id
	}
}
