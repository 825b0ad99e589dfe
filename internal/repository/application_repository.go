package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationColumns = `id, post_id, tutor_id, application_status, applied_at, updated_at`

type ApplicationRepository struct {
	*base.Repository
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{Repository: base.NewRepository(pool)}
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID,
		&app.PostID,
		&app.TutorID,
		&app.ApplicationStatus,
		&app.AppliedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) list(ctx context.Context, what, query string, args ...interface{}) ([]*model.Application, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}

	return apps, nil
}

// Create создаёт заявку
func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (id, post_id, tutor_id, application_status)
		VALUES ($1, $2, $3, $4)
		RETURNING applied_at
	`

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}

	err := r.QueryRow(ctx, query, app.ID, app.PostID, app.TutorID, app.ApplicationStatus).Scan(&app.AppliedAt)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application by id: %w", err)
	}

	return app, nil
}

// ListByTutor получает заявки репетитора
func (r *ApplicationRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID, page model.Page) ([]*model.Application, error) {
	query, args := base.Paginate(
		`SELECT `+applicationColumns+` FROM applications WHERE tutor_id = $1 ORDER BY applied_at DESC`,
		[]interface{}{tutorID}, page,
	)
	return r.list(ctx, "list applications by tutor", query, args...)
}

// ListByPost получает заявки поста, опционально с фильтром по статусам
func (r *ApplicationRepository) ListByPost(ctx context.Context, postID uuid.UUID, statuses []model.ApplicationStatus, page model.Page) ([]*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE post_id = $1`
	args := []interface{}{postID}

	if len(statuses) > 0 {
		query += ` AND application_status = ANY($2)`
		args = append(args, statusValues(statuses))
	}

	query, args = base.Paginate(query+` ORDER BY applied_at`, args, page)
	return r.list(ctx, "list applications by post", query, args...)
}

// Delete удаляет заявку, только если её текущий статус входит в statuses
func (r *ApplicationRepository) Delete(ctx context.Context, id uuid.UUID, statuses []model.ApplicationStatus) error {
	return r.ExecOne(ctx, "delete application",
		`DELETE FROM applications WHERE id = $1 AND application_status = ANY($2)`,
		id, statusValues(statuses),
	)
}

func statusValues(statuses []model.ApplicationStatus) []string {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}

// TransitionStatus меняет статус, только если текущий статус равен from
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) (bool, error) {
	query := `
		UPDATE applications
		SET application_status = $1, updated_at = now()
		WHERE id = $2 AND application_status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("transition application status: %w", err)
	}

	return affected == 1, nil
}
