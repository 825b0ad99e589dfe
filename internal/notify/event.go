package notify

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	// KindApplicationAccepted репетитору: его заявку одобрили
	KindApplicationAccepted Kind = "application_accepted"
	// KindApplicationPaid автору поста: репетитор оплатил заявку
	KindApplicationPaid Kind = "application_paid"
)

// Ключи Event.Context
const (
	CtxPostID        = "post_id"
	CtxPostTitle     = "post_title"
	CtxApplicationID = "application_id"
	CtxPosterName    = "poster_name"
	CtxPosterEmail   = "poster_email"
	CtxPosterPhone   = "poster_phone"
	CtxTutorName     = "tutor_name"
)

// Recipient адресат уведомления
type Recipient struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	TelegramID *int64    `json:"telegram_id,omitempty"`
}

// Event уведомление о смене состояния, без гарантий доставки
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Kind      Kind              `json:"kind"`
	Recipient Recipient         `json:"recipient"`
	Context   map[string]string `json:"context"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewEvent(kind Kind, recipient Recipient, context map[string]string) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		Context:   context,
		CreatedAt: time.Now().UTC(),
	}
}

// RoutingKey ключ маршрутизации для брокера
func (e Event) RoutingKey() string {
	return "notify." + string(e.Kind)
}
