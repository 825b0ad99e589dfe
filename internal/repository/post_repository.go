package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `id, creator_id, title, subject, level, address, salary_amount, sessions_per_week,
	minutes_per_session, preferred_times, student_info, requirements, mode, post_status,
	assigned_tutor, created_at, updated_at`

type PostRepository struct {
	*base.Repository
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{Repository: base.NewRepository(pool)}
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var post model.Post
	err := row.Scan(
		&post.ID,
		&post.CreatorID,
		&post.Title,
		&post.Subject,
		&post.Level,
		&post.Address,
		&post.SalaryAmount,
		&post.SessionsPerWeek,
		&post.MinutesPerSession,
		&post.PreferredTimes,
		&post.StudentInfo,
		&post.Requirements,
		&post.Mode,
		&post.PostStatus,
		&post.AssignedTutor,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create создаёт новый пост
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, creator_id, title, subject, level, address, salary_amount,
			sessions_per_week, minutes_per_session, preferred_times, student_info, requirements,
			mode, post_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}

	err := r.QueryRow(
		ctx, query,
		post.ID,
		post.CreatorID,
		post.Title,
		post.Subject,
		post.Level,
		post.Address,
		post.SalaryAmount,
		post.SessionsPerWeek,
		post.MinutesPerSession,
		post.PreferredTimes,
		post.StudentInfo,
		post.Requirements,
		post.Mode,
		post.PostStatus,
	).Scan(&post.CreatedAt)

	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

// GetByID получает пост по ID
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}

	return post, nil
}

// List получает посты по фильтру
func (r *PostRepository) List(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	var (
		conds []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CreatorID != nil {
		conds = append(conds, "creator_id = "+arg(*filter.CreatorID))
	}
	if filter.Status != nil {
		conds = append(conds, "post_status = "+arg(*filter.Status))
	}

	// Одно значение - поиск подстроки без учёта регистра, несколько - точное совпадение с любым
	textFilter := func(column string, values []string) {
		switch len(values) {
		case 0:
		case 1:
			conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", column, arg(values[0])))
		default:
			conds = append(conds, fmt.Sprintf("%s = ANY(%s)", column, arg(values)))
		}
	}
	textFilter("subject", filter.Subject)
	textFilter("level", filter.Level)
	textFilter("mode", filter.Mode)
	if filter.Address != "" {
		textFilter("address", []string{filter.Address})
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	query, args = base.Paginate(query, args, filter.Page)

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// Delete удаляет пост
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.ExecOne(ctx, "delete post", `DELETE FROM posts WHERE id = $1`, id)
}

// UpdateStatus обновляет статус поста
func (r *PostRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PostStatus) error {
	query := `UPDATE posts SET post_status = $1, updated_at = now() WHERE id = $2`
	return r.ExecOne(ctx, "update post status", query, status, id)
}

// ActivateIfInactive активирует пост одной операцией, если он ещё не active
func (r *PostRepository) ActivateIfInactive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE posts
		SET post_status = 'active', updated_at = now()
		WHERE id = $1 AND post_status <> 'active'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("activate post: %w", err)
	}

	return affected == 1, nil
}

// AssignTutor назначает репетитора один раз и активирует пост
func (r *PostRepository) AssignTutor(ctx context.Context, id, tutorID uuid.UUID) (bool, error) {
	query := `
		UPDATE posts
		SET assigned_tutor = $1, post_status = 'active', updated_at = now()
		WHERE id = $2 AND assigned_tutor IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, tutorID, id)
	if err != nil {
		return false, fmt.Errorf("assign tutor: %w", err)
	}

	return affected == 1, nil
}
