package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationService struct {
	appRepo  ApplicationRepository
	postRepo PostRepository
	userRepo UserRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewApplicationService(
	appRepo ApplicationRepository,
	postRepo PostRepository,
	userRepo UserRepository,
	notifier Notifier,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:  appRepo,
		postRepo: postRepo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Apply создаёт заявку вызывающего на пост. tutor_id всегда из токена
func (s *ApplicationService) Apply(ctx context.Context, actor model.Principal, postID uuid.UUID) (*model.Application, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}

	app := &model.Application{
		PostID:            post.ID,
		TutorID:           actor.ID,
		ApplicationStatus: model.ApplicationStatusPending,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("Application created",
		zap.String("application_id", app.ID.String()),
		zap.String("post_id", app.PostID.String()),
		zap.String("tutor_id", app.TutorID.String()),
	)

	return app, nil
}

func (s *ApplicationService) getApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, notFound("application")
	}
	return app, nil
}

// Delete отзыв заявки её репетитором до финального статуса
func (s *ApplicationService) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Is(app.TutorID) {
		return forbidden("delete this application")
	}
	if app.ApplicationStatus.IsTerminal() {
		return conflict("application is already %s", app.ApplicationStatus)
	}

	err = s.appRepo.Delete(ctx, id, model.DeletableStatuses)
	if errors.Is(err, base.ErrConditionFailed) {
		// Статус успел смениться (например, оплата) или заявку уже удалили
		current, getErr := s.appRepo.GetByID(ctx, id)
		if getErr != nil {
			return fmt.Errorf("get application: %w", getErr)
		}
		if current == nil {
			return notFound("application")
		}
		return conflict("application is already %s", current.ApplicationStatus)
	}
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	s.logger.Info("Application deleted",
		zap.String("application_id", id.String()),
		zap.String("tutor_id", actor.ID.String()),
	)
	return nil
}

// parseDecision пустой статус означает отказ
func parseDecision(raw string) (model.ApplicationStatus, error) {
	if isBlank(raw) {
		return model.ApplicationStatusRejected, nil
	}

	status := model.ApplicationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status == model.ApplicationStatusAcceptedAndPaid {
		return "", invalid("%s can only be reached through payment", status)
	}
	if !slices.Contains(model.DecisionStatuses, status) {
		return "", invalid("application_status must be 'accepted' or 'rejected'")
	}
	return status, nil
}

// SetStatus решение по заявке: автор поста или админ, только из pending
func (s *ApplicationService) SetStatus(ctx context.Context, actor model.Principal, id uuid.UUID, rawStatus string) (*model.Application, error) {
	status, err := parseDecision(rawStatus)
	if err != nil {
		return nil, err
	}

	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, app.PostID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}

	if !actor.IsOrAdmin(post.CreatorID) {
		return nil, forbidden("update this application")
	}

	if !app.IsPending() {
		return nil, conflict("application is already %s", app.ApplicationStatus)
	}

	ok, err := s.appRepo.TransitionStatus(ctx, app.ID, model.ApplicationStatusPending, status)
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	if !ok {
		return nil, conflict("application was processed concurrently")
	}

	s.logger.Info("Application status updated",
		zap.String("application_id", app.ID.String()),
		zap.String("status", string(status)),
		zap.String("actor_id", actor.ID.String()),
	)

	if status == model.ApplicationStatusAccepted {
		s.notifyAccepted(ctx, app, post)
	}

	return s.getApplication(ctx, app.ID)
}

// notifyAccepted ошибки только логируются
func (s *ApplicationService) notifyAccepted(ctx context.Context, app *model.Application, post *model.Post) {
	tutor, err := s.userRepo.GetByID(ctx, app.TutorID)
	if err != nil || tutor == nil {
		s.logger.Warn("Skip acceptance notification: tutor not loaded",
			zap.String("tutor_id", app.TutorID.String()),
			zap.Error(err),
		)
		return
	}

	data := map[string]string{
		notify.CtxPostID:        post.ID.String(),
		notify.CtxPostTitle:     post.Title,
		notify.CtxApplicationID: app.ID.String(),
	}

	poster, err := s.userRepo.GetByID(ctx, post.CreatorID)
	if err != nil {
		s.logger.Warn("Failed to load post creator for notification", zap.Error(err))
	}
	if poster != nil {
		data[notify.CtxPosterName] = displayName(poster)
		data[notify.CtxPosterEmail] = poster.Email
		data[notify.CtxPosterPhone] = poster.Phone
	}

	s.notifier.Notify(notify.NewEvent(notify.KindApplicationAccepted, recipientOf(tutor), data))
}

// ListMine заявки вызывающего
func (s *ApplicationService) ListMine(ctx context.Context, actor model.Principal, page model.Page) ([]*model.Application, error) {
	apps, err := s.appRepo.ListByTutor(ctx, actor.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return nonEmpty(apps, "applications")
}

// ListByPost заявки поста с необязательным фильтром по статусам
func (s *ApplicationService) ListByPost(ctx context.Context, postID uuid.UUID, statuses []model.ApplicationStatus, page model.Page) ([]*model.Application, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, invalid("unknown application_status %q", st)
		}
	}

	apps, err := s.appRepo.ListByPost(ctx, postID, statuses, page)
	if err != nil {
		return nil, fmt.Errorf("list applications by post: %w", err)
	}
	return nonEmpty(apps, "applications")
}
