package memory

import (
	"context"
	"testing"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitBalance(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &model.User{Username: "bronya", Balance: decimal.NewFromInt(100)}
	require.NoError(t, users.Create(ctx, u))

	balance, err := users.DebitBalance(ctx, u.ID, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(balance))

	_, err = users.DebitBalance(ctx, u.ID, decimal.NewFromInt(61))
	assert.ErrorIs(t, err, base.ErrConditionFailed)

	_, err = users.DebitBalance(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, base.ErrConditionFailed)

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60).Equal(got.Balance))
}

func TestUsers_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &model.User{Username: "herta"}))
	assert.Error(t, users.Create(ctx, &model.User{Username: "herta"}))

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u := &model.User{Username: "jingyuan", Subjects: []string{"Math"}}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Subjects[0] = "Poetry"
	got.Balance = decimal.NewFromInt(1_000_000)

	again, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math"}, again.Subjects)
	assert.True(t, again.Balance.IsZero())
}

func TestCollectPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	txs := store.Transactions()
	payer := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		tx := &model.Transaction{PayerID: payer, PostID: uuid.New(), AmountMoney: decimal.NewFromInt(int64(i + 1)), TransactionStatus: model.TransactionStatusPaid}
		require.NoError(t, txs.Create(ctx, tx))
		ids = append(ids, tx.ID)
	}

	all, err := txs.ListByPayer(ctx, payer, "", model.Page{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, ids[4], all[0].ID)

	page, err := txs.ListByPayer(ctx, payer, "", model.Page{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	beyond, err := txs.ListByPayer(ctx, payer, "", model.Page{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	other, err := txs.ListByPayer(ctx, payer, "refunded", model.Page{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestApplicationTransitionIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	apps := NewStore().Applications()

	app := &model.Application{PostID: uuid.New(), TutorID: uuid.New(), ApplicationStatus: model.ApplicationStatusPending}
	require.NoError(t, apps.Create(ctx, app))

	ok, err := apps.TransitionStatus(ctx, app.ID, model.ApplicationStatusPending, model.ApplicationStatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = apps.TransitionStatus(ctx, app.ID, model.ApplicationStatusPending, model.ApplicationStatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, got.ApplicationStatus)
}

func TestApplicationDeleteChecksStatus(t *testing.T) {
	ctx := context.Background()
	apps := NewStore().Applications()

	app := &model.Application{PostID: uuid.New(), TutorID: uuid.New(), ApplicationStatus: model.ApplicationStatusAcceptedAndPaid}
	require.NoError(t, apps.Create(ctx, app))

	err := apps.Delete(ctx, app.ID, model.DeletableStatuses)
	assert.ErrorIs(t, err, base.ErrConditionFailed)

	got, err := apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.ErrorIs(t, apps.Delete(ctx, uuid.New(), model.DeletableStatuses), base.ErrConditionFailed)
}
