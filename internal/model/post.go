package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PostStatus string

const (
	PostStatusActive   PostStatus = "active"   // Оплачено / занято
	PostStatusInactive PostStatus = "inactive" // Открыто, ещё не оплачено
)

// Valid проверяет что статус из закрытого набора {active, inactive}
func (s PostStatus) Valid() bool {
	return s == PostStatusActive || s == PostStatusInactive
}

type Post struct {
	ID                uuid.UUID        `json:"id"`
	CreatorID         uuid.UUID        `json:"creator_id"`
	Title             string           `json:"title"`
	Subject           string           `json:"subject,omitempty"`
	Level             string           `json:"level,omitempty"`
	Address           string           `json:"address,omitempty"`
	SalaryAmount      *decimal.Decimal `json:"salary_amount,omitempty"`
	SessionsPerWeek   *int             `json:"sessions_per_week,omitempty"`
	MinutesPerSession *int             `json:"minutes_per_session,omitempty"`
	PreferredTimes    string           `json:"preferred_times,omitempty"`
	StudentInfo       string           `json:"student_info,omitempty"`
	Requirements      string           `json:"requirements,omitempty"`
	Mode              string           `json:"mode,omitempty"` // online, offline, hybrid
	PostStatus        PostStatus       `json:"post_status"`
	AssignedTutor     *uuid.UUID       `json:"assigned_tutor"` // задаётся один раз при оплате заявки
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         *time.Time       `json:"updated_at"`
}

// IsActive checks if post is already paid for
func (p *Post) IsActive() bool {
	return p.PostStatus == PostStatusActive
}

// HasTutor checks if a tutor was already assigned
func (p *Post) HasTutor() bool {
	return p.AssignedTutor != nil
}

// PostFilter условия выборки постов (конъюнкция)
type PostFilter struct {
	CreatorID *uuid.UUID
	Status    *PostStatus
	Subject   []string
	Level     []string
	Mode      []string
	Address   string
	Page      Page
}
