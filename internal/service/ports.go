package service

import (
	"context"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Интерфейсы хранилища. Реализации: repository (Postgres) и repository/memory.
// Get* возвращают nil, nil если запись не найдена.
// Условные обновления (Debit*, *If*, Transition*) выполняются одной атомарной операцией
// и возвращают false / base.ErrConditionFailed, если условие не выполнено.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error
	ListByStatus(ctx context.Context, status model.UserStatus, page model.Page) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	// DebitBalance списывает amount только если balance >= amount, возвращает новый баланс
	DebitBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error
	// ActivateIfInactive переводит пост в active, если он ещё не active
	ActivateIfInactive(ctx context.Context, id uuid.UUID) (bool, error)
	// AssignTutor назначает репетитора и активирует пост, если репетитор ещё не назначен
	AssignTutor(ctx context.Context, id, tutorID uuid.UUID) (bool, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListByTutor(ctx context.Context, tutorID uuid.UUID, page model.Page) ([]*model.Application, error)
	ListByPost(ctx context.Context, postID uuid.UUID, statuses []model.ApplicationStatus, page model.Page) ([]*model.Application, error)
	// Delete удаляет заявку только в одном из statuses
	Delete(ctx context.Context, id uuid.UUID, statuses []model.ApplicationStatus) error
	// TransitionStatus compare-and-swap: меняет статус только если текущий == from
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) (bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListByParty(ctx context.Context, scope model.BookingScope, userID uuid.UUID, page model.Page) ([]*model.Booking, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// TransactionRepository только добавление и чтение: записи леджера не меняются и не удаляются
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByPayer(ctx context.Context, payerID uuid.UUID, status string, page model.Page) ([]*model.Transaction, error)
}

type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Rating, error)
	Update(ctx context.Context, rating *model.Rating) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.Rating, error)
	Totals(ctx context.Context, tutorID uuid.UUID) (model.RatingTotals, error)
}

// Notifier принимает событие без ожидания доставки. Ошибок не возвращает.
type Notifier interface {
	Notify(event notify.Event)
}
