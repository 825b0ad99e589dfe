package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	s *Store
}

func cloneUser(u model.User) *model.User {
	u.Subjects = slices.Clone(u.Subjects)
	u.Levels = slices.Clone(u.Levels)
	if u.TelegramID != nil {
		id := *u.TelegramID
		u.TelegramID = &id
	}
	return &u
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.v.Username == user.Username {
			return fmt.Errorf("create user: username %q already taken", user.Username)
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.s.now()

	r.s.users[user.ID] = &row[model.User]{v: *cloneUser(*user), seq: r.s.nextSeq()}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return cloneUser(u.v), nil
	}
	return nil, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.v.Username == username {
			return cloneUser(u.v), nil
		}
	}
	return nil, nil
}

// UpdateProfile меняет только поля профиля, баланс/роль/статус не трогает
func (r *UserRepository) UpdateProfile(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok {
		return conditionFailed("update user profile")
	}

	u.v.Email = user.Email
	u.v.Phone = user.Phone
	u.v.DisplayName = user.DisplayName
	u.v.Subjects = slices.Clone(user.Subjects)
	u.v.Levels = slices.Clone(user.Levels)
	u.v.Gender = user.Gender
	u.v.Address = user.Address
	u.v.Bio = user.Bio
	u.v.TelegramID = cloneUser(*user).TelegramID
	return nil
}

func (r *UserRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return conditionFailed("update user status")
	}
	u.v.Status = status
	return nil
}

func (r *UserRepository) ListByStatus(_ context.Context, status model.UserStatus, page model.Page) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := collect(r.s.users, func(u *model.User) bool { return u.Status == status }, false, page)
	users := make([]*model.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, cloneUser(u.v))
	}
	return users, nil
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.s.users)), nil
}

func (r *UserRepository) DebitBalance(_ context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.v.Balance.LessThan(amount) {
		return decimal.Zero, conditionFailed("debit balance")
	}

	u.v.Balance = u.v.Balance.Sub(amount)
	return u.v.Balance, nil
}
