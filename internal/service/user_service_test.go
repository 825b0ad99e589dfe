package service

import (
	"testing"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "bronya", 0)

	token, err := f.users.Login(f.ctx, " bronya ", "pw-bronya")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.users.Login(f.ctx, "bronya", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.users.Login(f.ctx, "nobody", "pw-bronya")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	profile, err := f.users.Profile(f.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "bronya", profile.Username)
	assert.Nil(t, profile.Average)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "bronya", 0)

	_, err := f.users.UpdateProfile(f.ctx, user, model.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	blank := "  "
	_, err = f.users.UpdateProfile(f.ctx, user, model.ProfileUpdate{Bio: &blank, Subjects: []string{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bio := "Physics student"
	chat := int64(4242)
	profile, err := f.users.UpdateProfile(f.ctx, user, model.ProfileUpdate{
		Bio: &bio, Address: &blank, Subjects: []string{"Physics"}, TelegramID: &chat,
	})
	require.NoError(t, err)
	assert.Equal(t, "Physics student", profile.Bio)
	assert.Equal(t, []string{"Physics"}, profile.Subjects)
	assert.Equal(t, "bronya@example.com", profile.Email, "untouched field kept")
	require.NotNil(t, profile.TelegramID)
	assert.Equal(t, int64(4242), *profile.TelegramID)
}

func TestVerificationFlow(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "bronya", 0)
	admin := f.admin(t)

	require.NoError(t, f.users.RequestVerification(f.ctx, user))

	assert.ErrorIs(t, f.users.SetStatus(f.ctx, user, user.ID, model.UserStatusAccepted), ErrForbidden)
	assert.ErrorIs(t, f.users.SetStatus(f.ctx, admin, user.ID, "approved"), ErrInvalidInput)
	assert.ErrorIs(t, f.users.SetStatus(f.ctx, admin, uuid.New(), model.UserStatusAccepted), ErrNotFound)

	pending, err := f.users.ListByStatus(f.ctx, admin, model.UserStatusPending, model.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, user.ID, pending[0].ID)

	_, err = f.users.ListByStatus(f.ctx, user, model.UserStatusPending, model.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.users.SetStatus(f.ctx, admin, user.ID, model.UserStatusAccepted))

	pending, err = f.users.ListByStatus(f.ctx, admin, model.UserStatusPending, model.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, pending)

	verified := user
	verified.Status = model.UserStatusAccepted
	assert.ErrorIs(t, f.users.RequestVerification(f.ctx, verified), ErrConflict)

	// Админ может отозвать уже подтверждённый профиль
	require.NoError(t, f.users.SetStatus(f.ctx, admin, user.ID, model.UserStatusRejected))
	rejected, err := f.users.ListByStatus(f.ctx, admin, model.UserStatusRejected, model.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
}

func TestSeedDemo(t *testing.T) {
	f := newFixture(t)

	n, err := f.users.SeedDemo(f.ctx, DemoUsers)
	require.NoError(t, err)
	assert.Equal(t, len(DemoUsers), n)

	n, err = f.users.SeedDemo(f.ctx, DemoUsers)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.users.Login(f.ctx, "qui", DemoPassword)
	require.NoError(t, err)

	qui, err := f.store.Users().GetByUsername(f.ctx, "qui")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, qui.Role)
	assert.Equal(t, model.UserStatusAccepted, qui.Status)
}
