package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/auth"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/Freeeeeet/tutorhub/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

// fixture все сервисы поверх одного хранилища в памяти
type fixture struct {
	ctx      context.Context
	store    *memory.Store
	notifier *recordingNotifier

	users        *UserService
	posts        *PostService
	applications *ApplicationService
	bookings     *BookingService
	ledger       *LedgerService
	ratings      *RatingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	ratings := NewRatingService(store.Ratings(), store.Users(), store.Bookings(), logger)

	return &fixture{
		ctx:          context.Background(),
		store:        store,
		notifier:     notifier,
		users:        NewUserService(store.Users(), ratings, auth.NewTokens("test-secret", time.Hour), logger),
		posts:        NewPostService(store.Posts(), logger),
		applications: NewApplicationService(store.Applications(), store.Posts(), store.Users(), notifier, logger),
		bookings:     NewBookingService(store.Bookings(), store.Posts(), store.Users(), logger),
		ledger:       NewLedgerService(store.Users(), store.Posts(), store.Applications(), store.Transactions(), notifier, logger),
		ratings:      ratings,
	}
}

func (f *fixture) user(t *testing.T, username string, balance int64) model.Principal {
	t.Helper()
	return f.userWithRole(t, username, balance, model.RoleCustomer)
}

func (f *fixture) admin(t *testing.T) model.Principal {
	t.Helper()
	return f.userWithRole(t, "admin", 0, model.RoleAdmin)
}

func (f *fixture) userWithRole(t *testing.T, username string, balance int64, role model.Role) model.Principal {
	t.Helper()

	hash, err := auth.HashPassword("pw-" + username)
	require.NoError(t, err)

	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		Phone:        "0900",
		PasswordHash: hash,
		DisplayName:  username,
		Role:         role,
		Status:       model.UserStatusUnverified,
		Balance:      decimal.NewFromInt(balance),
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u.Principal()
}

func (f *fixture) balance(t *testing.T, p model.Principal) decimal.Decimal {
	t.Helper()
	u, err := f.store.Users().GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.Balance
}

func (f *fixture) post(t *testing.T, creator model.Principal, title string) *model.Post {
	t.Helper()
	post, err := f.posts.CreatePost(f.ctx, creator, &model.Post{Title: title, Subject: "Math", Level: "9", Mode: "online"})
	require.NoError(t, err)
	return post
}

func (f *fixture) transactions(t *testing.T, payer model.Principal) []*model.Transaction {
	t.Helper()
	txs, err := f.store.Transactions().ListByPayer(f.ctx, payer.ID, "", model.Page{})
	require.NoError(t, err)
	return txs
}

// acceptedApplication пост от parent, заявка tutor, одобрена
func (f *fixture) acceptedApplication(t *testing.T, parent, tutor model.Principal) (*model.Post, *model.Application) {
	t.Helper()
	post := f.post(t, parent, "Physics grade 10")
	app, err := f.applications.Apply(f.ctx, tutor, post.ID)
	require.NoError(t, err)
	app, err = f.applications.SetStatus(f.ctx, parent, app.ID, "accepted")
	require.NoError(t, err)
	return post, app
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
