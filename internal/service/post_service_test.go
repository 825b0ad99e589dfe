package service

import (
	"testing"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	other := f.user(t, "herta", 0)
	salary := decimal.NewFromInt(200_000)

	post, err := f.posts.CreatePost(f.ctx, parent, &model.Post{
		ID:            uuid.New(),
		CreatorID:     other.ID,
		Title:         "  Math grade 9 ",
		SalaryAmount:  &salary,
		PostStatus:    model.PostStatusActive,
		AssignedTutor: &other.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Math grade 9", post.Title)
	assert.Equal(t, parent.ID, post.CreatorID)
	assert.Equal(t, model.PostStatusInactive, post.PostStatus)
	assert.Nil(t, post.AssignedTutor)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	negative := decimal.NewFromInt(-1)
	minus := -1

	tests := []struct {
		name string
		post *model.Post
	}{
		{"blank title", &model.Post{Title: "   "}},
		{"negative salary", &model.Post{Title: "x", SalaryAmount: &negative}},
		{"negative sessions", &model.Post{Title: "x", SessionsPerWeek: &minus}},
		{"negative minutes", &model.Post{Title: "x", MinutesPerSession: &minus}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.CreatePost(f.ctx, parent, tt.post)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestListPosts(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 100_000)
	other := f.user(t, "herta", 0)

	_, err := f.posts.ListPosts(f.ctx, parent, PostScopeMe, model.PostFilter{})
	assert.ErrorIs(t, err, ErrNotFound)

	math := f.post(t, parent, "Math")
	funded := f.post(t, parent, "Physics")
	_, err = f.ledger.FundPost(f.ctx, parent, funded.ID, amount(1_000))
	require.NoError(t, err)
	foreign := f.post(t, other, "Chemistry")

	mine, err := f.posts.ListPosts(f.ctx, parent, PostScopeMe, model.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	open, err := f.posts.ListPosts(f.ctx, parent, PostScopeAll, model.PostFilter{})
	require.NoError(t, err)
	ids := []uuid.UUID{}
	for _, p := range open {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{math.ID, foreign.ID}, ids)

	limited, err := f.posts.ListPosts(f.ctx, parent, PostScopeAll, model.PostFilter{Page: model.Page{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, foreign.ID, limited[0].ID, "newest first")

	_, err = f.posts.ListPosts(f.ctx, parent, "everyone", model.PostFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListPosts_Filters(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)

	for _, p := range []*model.Post{
		{Title: "a", Subject: "Mathematics", Level: "9", Mode: "online", Address: "Da Nang"},
		{Title: "b", Subject: "Physics", Level: "10", Mode: "offline", Address: "Can Tho"},
		{Title: "c", Subject: "Math", Level: "10", Mode: "online", Address: "Ho Chi Minh City"},
	} {
		_, err := f.posts.CreatePost(f.ctx, parent, p)
		require.NoError(t, err)
	}

	titles := func(t *testing.T, filter model.PostFilter) []string {
		t.Helper()
		posts, err := f.posts.ListPosts(f.ctx, parent, PostScopeAll, filter)
		if err != nil {
			require.ErrorIs(t, err, ErrNotFound)
			return nil
		}
		var out []string
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a", "c"}, titles(t, model.PostFilter{Subject: []string{"math"}}))
	assert.ElementsMatch(t, []string{"b", "c"}, titles(t, model.PostFilter{Subject: []string{"Math", "Physics"}}))
	assert.ElementsMatch(t, []string{"c"}, titles(t, model.PostFilter{Level: []string{"10"}, Mode: []string{"online"}}))
	assert.ElementsMatch(t, []string{"b"}, titles(t, model.PostFilter{Address: "can"}))
	assert.Empty(t, titles(t, model.PostFilter{Subject: []string{"Biology"}}))
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	admin := f.admin(t)
	post := f.post(t, parent, "Math")

	assert.ErrorIs(t, f.posts.DeletePost(f.ctx, admin, post.ID), ErrForbidden)
	require.NoError(t, f.posts.DeletePost(f.ctx, parent, post.ID))

	_, err := f.posts.GetPost(f.ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.posts.DeletePost(f.ctx, parent, post.ID), ErrNotFound)
}

func TestPostSetStatus(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	stranger := f.user(t, "herta", 0)
	admin := f.admin(t)
	post := f.post(t, parent, "Math")

	_, err := f.posts.SetStatus(f.ctx, stranger, post.ID, model.PostStatusActive)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.posts.SetStatus(f.ctx, parent, post.ID, "closed")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := f.posts.SetStatus(f.ctx, admin, post.ID, model.PostStatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusActive, got.PostStatus)

	got, err = f.posts.SetStatus(f.ctx, parent, post.ID, model.PostStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusInactive, got.PostStatus)
}

func TestGetPost_RepeatedReadsAreIdentical(t *testing.T) {
	f := newFixture(t)
	parent := f.user(t, "bronya", 0)
	post := f.post(t, parent, "Math")

	first, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	second, err := f.posts.GetPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
