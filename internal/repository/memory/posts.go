package memory

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

type PostRepository struct {
	s *Store
}

func clonePost(p model.Post) *model.Post {
	if p.SalaryAmount != nil {
		v := *p.SalaryAmount
		p.SalaryAmount = &v
	}
	if p.SessionsPerWeek != nil {
		v := *p.SessionsPerWeek
		p.SessionsPerWeek = &v
	}
	if p.MinutesPerSession != nil {
		v := *p.MinutesPerSession
		p.MinutesPerSession = &v
	}
	if p.AssignedTutor != nil {
		v := *p.AssignedTutor
		p.AssignedTutor = &v
	}
	if p.UpdatedAt != nil {
		v := *p.UpdatedAt
		p.UpdatedAt = &v
	}
	return &p
}

// matchText одно значение - подстрока без учёта регистра, несколько - точное совпадение с любым
func matchText(field string, values []string) bool {
	switch len(values) {
	case 0:
		return true
	case 1:
		return strings.Contains(strings.ToLower(field), strings.ToLower(values[0]))
	}
	for _, v := range values {
		if field == v {
			return true
		}
	}
	return false
}

func (r *PostRepository) Create(_ context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = r.s.now()

	r.s.posts[post.ID] = &row[model.Post]{v: *clonePost(*post), seq: r.s.nextSeq()}
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.posts[id]; ok {
		return clonePost(p.v), nil
	}
	return nil, nil
}

func (r *PostRepository) List(_ context.Context, filter model.PostFilter) ([]*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match := func(p *model.Post) bool {
		if filter.CreatorID != nil && p.CreatorID != *filter.CreatorID {
			return false
		}
		if filter.Status != nil && p.PostStatus != *filter.Status {
			return false
		}
		if filter.Address != "" && !matchText(p.Address, []string{filter.Address}) {
			return false
		}
		return matchText(p.Subject, filter.Subject) &&
			matchText(p.Level, filter.Level) &&
			matchText(p.Mode, filter.Mode)
	}

	rows := collect(r.s.posts, match, true, filter.Page)
	posts := make([]*model.Post, 0, len(rows))
	for _, p := range rows {
		posts = append(posts, clonePost(p.v))
	}
	return posts, nil
}

func (r *PostRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return conditionFailed("delete post")
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.PostStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return conditionFailed("update post status")
	}
	now := r.s.now()
	p.v.PostStatus = status
	p.v.UpdatedAt = &now
	return nil
}

func (r *PostRepository) ActivateIfInactive(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || p.v.IsActive() {
		return false, nil
	}
	now := r.s.now()
	p.v.PostStatus = model.PostStatusActive
	p.v.UpdatedAt = &now
	return true, nil
}

func (r *PostRepository) AssignTutor(_ context.Context, id, tutorID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || p.v.HasTutor() {
		return false, nil
	}
	now := r.s.now()
	p.v.AssignedTutor = &tutorID
	p.v.PostStatus = model.PostStatusActive
	p.v.UpdatedAt = &now
	return true, nil
}
