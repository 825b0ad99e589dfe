package service

import (
	"sync"
	"testing"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundPost_Success(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 200_000)
	post := f.post(t, parent, "Math grade 9")

	tx, err := f.ledger.FundPost(f.ctx, parent, post.ID, amount(50_000))
	require.NoError(t, err)

	assert.True(t, amount(150_000).Equal(f.balance(t, parent)))
	assert.Equal(t, model.TransactionStatusPaid, tx.TransactionStatus)
	assert.True(t, amount(50_000).Equal(tx.AmountMoney))
	assert.Equal(t, post.ID, tx.PostID)
	assert.Equal(t, parent.ID, tx.PayerID)

	got, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusActive, got.PostStatus)

	txs := f.transactions(t, parent)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)
}

func TestFundPost_AlreadyActive(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 200_000)
	post := f.post(t, parent, "Math grade 9")

	_, err := f.ledger.FundPost(f.ctx, parent, post.ID, amount(50_000))
	require.NoError(t, err)

	_, err = f.ledger.FundPost(f.ctx, parent, post.ID, amount(50_000))
	assert.ErrorIs(t, err, ErrConflict)

	assert.True(t, amount(150_000).Equal(f.balance(t, parent)), "second attempt must not debit")
	assert.Len(t, f.transactions(t, parent), 1)
}

func TestFundPost_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 100_000)
	post := f.post(t, parent, "Math grade 9")

	_, err := f.ledger.FundPost(f.ctx, parent, post.ID, amount(150_000))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Contains(t, err.Error(), "100000.00")

	assert.True(t, amount(100_000).Equal(f.balance(t, parent)))
	assert.Empty(t, f.transactions(t, parent))

	got, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusInactive, got.PostStatus)
}

func TestFundPost_Validation(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 100_000)
	other := f.user(t, "herta", 100_000)
	post := f.post(t, parent, "Math grade 9")

	tests := []struct {
		name   string
		actor  model.Principal
		postID uuid.UUID
		amount decimal.Decimal
		err    error
	}{
		{"zero amount", parent, post.ID, decimal.Zero, ErrInvalidInput},
		{"negative amount", parent, post.ID, amount(-5), ErrInvalidInput},
		{"fractional cents", parent, post.ID, decimal.RequireFromString("1.005"), ErrInvalidInput},
		{"missing post", parent, uuid.New(), amount(10), ErrNotFound},
		{"not the creator", other, post.ID, amount(10), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.FundPost(f.ctx, tt.actor, tt.postID, tt.amount)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.True(t, amount(100_000).Equal(f.balance(t, parent)))
	assert.True(t, amount(100_000).Equal(f.balance(t, other)))
}

func TestFundPost_ConcurrentRequestsActivateOnce(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 1_000_000)
	post := f.post(t, parent, "Math grade 9")

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.FundPost(f.ctx, parent, post.ID, amount(10_000)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.transactions(t, parent), 1)
	assert.True(t, amount(990_000).Equal(f.balance(t, parent)))
	assert.Zero(t, f.ledger.locks.size())
}

func TestPayApplication_Success(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	tutor := f.user(t, "jingyuan", 750_000)
	post, app := f.acceptedApplication(t, parent, tutor)

	tx, err := f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(50_000))
	require.NoError(t, err)
	assert.Equal(t, post.ID, tx.PostID)
	assert.Equal(t, tutor.ID, tx.PayerID)

	assert.True(t, amount(700_000).Equal(f.balance(t, tutor)))

	gotApp, err := f.store.Applications().GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAcceptedAndPaid, gotApp.ApplicationStatus)

	gotPost, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusActive, gotPost.PostStatus)
	require.NotNil(t, gotPost.AssignedTutor)
	assert.Equal(t, tutor.ID, *gotPost.AssignedTutor)

	events := f.notifier.Events()
	require.Len(t, events, 2)
	paid := events[1]
	assert.Equal(t, notify.KindApplicationPaid, paid.Kind)
	assert.Equal(t, parent.ID, paid.Recipient.UserID)
	assert.Equal(t, "bronya@example.com", paid.Recipient.Email)
	assert.Equal(t, post.Title, paid.Context[notify.CtxPostTitle])
	assert.Equal(t, "jingyuan", paid.Context[notify.CtxTutorName])
}

func TestPayApplication_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	tutor := f.user(t, "jingyuan", 100_000)
	post, app := f.acceptedApplication(t, parent, tutor)

	_, err := f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(150_000))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	assert.True(t, amount(100_000).Equal(f.balance(t, tutor)))
	assert.Empty(t, f.transactions(t, tutor))

	gotApp, err := f.store.Applications().GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, gotApp.ApplicationStatus)

	gotPost, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, gotPost.AssignedTutor)
	assert.Equal(t, model.PostStatusInactive, gotPost.PostStatus)
}

func TestPayApplication_Preconditions(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	tutor := f.user(t, "jingyuan", 500_000)
	other := f.user(t, "herta", 500_000)

	t.Run("not the applicant", func(t *testing.T) {
		_, app := f.acceptedApplication(t, parent, tutor)
		_, err := f.ledger.PayApplication(f.ctx, other, app.ID, amount(10))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing application", func(t *testing.T) {
		_, err := f.ledger.PayApplication(f.ctx, tutor, uuid.New(), amount(10))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("still pending", func(t *testing.T) {
		post := f.post(t, parent, "Chemistry")
		app, err := f.applications.Apply(f.ctx, tutor, post.ID)
		require.NoError(t, err)

		_, err = f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(10))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("paid twice", func(t *testing.T) {
		_, app := f.acceptedApplication(t, parent, tutor)
		_, err := f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(10))
		require.NoError(t, err)

		_, err = f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(10))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("post already has a tutor", func(t *testing.T) {
		post := f.post(t, parent, "Biology")
		first, err := f.applications.Apply(f.ctx, tutor, post.ID)
		require.NoError(t, err)
		second, err := f.applications.Apply(f.ctx, other, post.ID)
		require.NoError(t, err)
		_, err = f.applications.SetStatus(f.ctx, parent, first.ID, "accepted")
		require.NoError(t, err)
		_, err = f.applications.SetStatus(f.ctx, parent, second.ID, "accepted")
		require.NoError(t, err)

		_, err = f.ledger.PayApplication(f.ctx, tutor, first.ID, amount(10))
		require.NoError(t, err)

		before := f.balance(t, other)
		_, err = f.ledger.PayApplication(f.ctx, other, second.ID, amount(10))
		assert.ErrorIs(t, err, ErrConflict)
		assert.True(t, before.Equal(f.balance(t, other)))

		got, err := f.posts.GetPost(f.ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, tutor.ID, *got.AssignedTutor)
	})
}

func TestPayApplication_ConcurrentPaysOnce(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	tutor := f.user(t, "jingyuan", 1_000_000)
	_, app := f.acceptedApplication(t, parent, tutor)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.ledger.PayApplication(f.ctx, tutor, app.ID, amount(100_000))
		}()
	}
	wg.Wait()

	assert.Len(t, f.transactions(t, tutor), 1)
	assert.True(t, amount(900_000).Equal(f.balance(t, tutor)))
}

func TestLedgerListMine(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 200_000)

	_, err := f.ledger.ListMine(f.ctx, parent, "", model.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrNotFound)

	first := f.post(t, parent, "Math")
	second := f.post(t, parent, "Physics")
	_, err = f.ledger.FundPost(f.ctx, parent, first.ID, amount(1_000))
	require.NoError(t, err)
	_, err = f.ledger.FundPost(f.ctx, parent, second.ID, amount(2_000))
	require.NoError(t, err)

	txs, err := f.ledger.ListMine(f.ctx, parent, "string", model.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].PostID, "newest first")

	txs, err = f.ledger.ListMine(f.ctx, parent, model.TransactionStatusPaid, model.Page{Skip: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, first.ID, txs[0].PostID)
}
