package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostScope чьи посты показывать
type PostScope string

const (
	PostScopeMe  PostScope = "me"  // свои, в любом статусе
	PostScopeAll PostScope = "all" // открытые (inactive) посты всех
)

type PostService struct {
	postRepo PostRepository
	logger   *zap.Logger
}

func NewPostService(postRepo PostRepository, logger *zap.Logger) *PostService {
	return &PostService{
		postRepo: postRepo,
		logger:   logger,
	}
}

// CreatePost создаёт пост от имени вызывающего. Новый пост всегда inactive
func (s *PostService) CreatePost(ctx context.Context, actor model.Principal, post *model.Post) (*model.Post, error) {
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return nil, invalid("title is required")
	}
	if post.SalaryAmount != nil && post.SalaryAmount.IsNegative() {
		return nil, invalid("salary_amount must not be negative")
	}
	if post.SessionsPerWeek != nil && *post.SessionsPerWeek < 0 {
		return nil, invalid("sessions_per_week must not be negative")
	}
	if post.MinutesPerSession != nil && *post.MinutesPerSession < 0 {
		return nil, invalid("minutes_per_session must not be negative")
	}

	post.ID = uuid.Nil
	post.CreatorID = actor.ID
	post.PostStatus = model.PostStatusInactive
	post.AssignedTutor = nil
	post.UpdatedAt = nil

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("creator_id", post.CreatorID.String()),
		zap.String("title", post.Title),
	)

	return post, nil
}

// GetPost детали поста
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}
	return post, nil
}

// ListPosts выборка по scope и фильтрам
func (s *PostService) ListPosts(ctx context.Context, actor model.Principal, scope PostScope, filter model.PostFilter) ([]*model.Post, error) {
	switch scope {
	case PostScopeMe:
		filter.CreatorID = &actor.ID
		filter.Status = nil
	case PostScopeAll:
		open := model.PostStatusInactive
		filter.CreatorID = nil
		filter.Status = &open
	default:
		return nil, invalid("scope must be 'me' or 'all'")
	}

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return nonEmpty(posts, "posts")
}

// DeletePost удалить может только автор. Заявки и бронирования поста не трогаются
func (s *PostService) DeletePost(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Is(post.CreatorID) {
		return forbidden("delete this post")
	}

	err = s.postRepo.Delete(ctx, id)
	if errors.Is(err, base.ErrConditionFailed) {
		return notFound("post")
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.logger.Info("Post deleted",
		zap.String("post_id", id.String()),
		zap.String("creator_id", actor.ID.String()),
	)
	return nil
}

// SetStatus ручная смена статуса: автор или админ
func (s *PostService) SetStatus(ctx context.Context, actor model.Principal, id uuid.UUID, status model.PostStatus) (*model.Post, error) {
	if !status.Valid() {
		return nil, invalid("post_status must be 'active' or 'inactive'")
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsOrAdmin(post.CreatorID) {
		return nil, forbidden("update this post")
	}

	err = s.postRepo.UpdateStatus(ctx, id, status)
	if errors.Is(err, base.ErrConditionFailed) {
		return nil, notFound("post")
	}
	if err != nil {
		return nil, fmt.Errorf("update post status: %w", err)
	}

	s.logger.Info("Post status updated",
		zap.String("post_id", id.String()),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.ID.String()),
	)

	return s.GetPost(ctx, id)
}
