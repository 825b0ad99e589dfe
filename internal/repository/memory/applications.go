package memory

import (
	"context"
	"slices"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

type ApplicationRepository struct {
	s *Store
}

func cloneApplication(a model.Application) *model.Application {
	if a.UpdatedAt != nil {
		v := *a.UpdatedAt
		a.UpdatedAt = &v
	}
	return &a
}

func (r *ApplicationRepository) Create(_ context.Context, app *model.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	app.AppliedAt = r.s.now()

	r.s.applications[app.ID] = &row[model.Application]{v: *cloneApplication(*app), seq: r.s.nextSeq()}
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if a, ok := r.s.applications[id]; ok {
		return cloneApplication(a.v), nil
	}
	return nil, nil
}

func (r *ApplicationRepository) ListByTutor(_ context.Context, tutorID uuid.UUID, page model.Page) ([]*model.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := collect(r.s.applications, func(a *model.Application) bool { return a.TutorID == tutorID }, true, page)
	return applicationsFrom(rows), nil
}

func (r *ApplicationRepository) ListByPost(_ context.Context, postID uuid.UUID, statuses []model.ApplicationStatus, page model.Page) ([]*model.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match := func(a *model.Application) bool {
		if a.PostID != postID {
			return false
		}
		return len(statuses) == 0 || slices.Contains(statuses, a.ApplicationStatus)
	}

	return applicationsFrom(collect(r.s.applications, match, false, page)), nil
}

func applicationsFrom(rows []*row[model.Application]) []*model.Application {
	apps := make([]*model.Application, 0, len(rows))
	for _, a := range rows {
		apps = append(apps, cloneApplication(a.v))
	}
	return apps
}

func (r *ApplicationRepository) Delete(_ context.Context, id uuid.UUID, statuses []model.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok || !slices.Contains(statuses, a.v.ApplicationStatus) {
		return conditionFailed("delete application")
	}
	delete(r.s.applications, id)
	return nil
}

func (r *ApplicationRepository) TransitionStatus(_ context.Context, id uuid.UUID, from, to model.ApplicationStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok || a.v.ApplicationStatus != from {
		return false, nil
	}
	now := r.s.now()
	a.v.ApplicationStatus = to
	a.v.UpdatedAt = &now
	return true, nil
}
