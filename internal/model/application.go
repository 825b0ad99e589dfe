package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusPending         ApplicationStatus = "pending"
	ApplicationStatusAccepted        ApplicationStatus = "accepted"
	ApplicationStatusRejected        ApplicationStatus = "rejected"
	ApplicationStatusAcceptedAndPaid ApplicationStatus = "accepted_and_paid" // только через оплату
)

// Valid проверяет что статус известен
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted,
		ApplicationStatusRejected, ApplicationStatusAcceptedAndPaid:
		return true
	}
	return false
}

// IsTerminal true для статусов без выхода
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusAcceptedAndPaid
}

// DeletableStatuses статусы, в которых репетитор может отозвать заявку
var DeletableStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusAccepted}

// DecisionStatuses статусы, которые может выставить владелец поста
var DecisionStatuses = []ApplicationStatus{ApplicationStatusAccepted, ApplicationStatusRejected}

type Application struct {
	ID                uuid.UUID         `json:"id"`
	PostID            uuid.UUID         `json:"post_id"`
	TutorID           uuid.UUID         `json:"tutor_id"` // неизменяем после создания
	ApplicationStatus ApplicationStatus `json:"application_status"`
	AppliedAt         time.Time         `json:"applied_at"`
	UpdatedAt         *time.Time        `json:"updated_at"`
}

// IsPending checks if application waits for decision
func (a *Application) IsPending() bool {
	return a.ApplicationStatus == ApplicationStatusPending
}

// IsAccepted checks if application was accepted but not paid yet
func (a *Application) IsAccepted() bool {
	return a.ApplicationStatus == ApplicationStatusAccepted
}
