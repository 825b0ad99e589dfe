package base

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConditionFailed условное обновление не затронуло ни одной строки
var ErrConditionFailed = errors.New("condition failed")

// Repository базовый репозиторий с общими методами
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый базовый репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// QueryRow выполняет запрос и возвращает одну строку
func (r *Repository) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return r.pool.QueryRow(ctx, query, args...)
}

// Query выполняет запрос и возвращает множество строк
func (r *Repository) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return r.pool.Query(ctx, query, args...)
}

// ExecAffected выполняет команду и возвращает количество затронутых строк
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExecOne выполняет команду, которая должна затронуть ровно одну строку
func (r *Repository) ExecOne(ctx context.Context, what string, query string, args ...interface{}) error {
	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrConditionFailed)
	}
	return nil
}

// Paginate дописывает LIMIT/OFFSET к запросу и к аргументам. Limit = 0 - без ограничения
func Paginate(query string, args []interface{}, page model.Page) (string, []interface{}) {
	n := len(args)
	query = fmt.Sprintf("%s LIMIT NULLIF($%d::int, 0) OFFSET $%d", query, n+1, n+2)
	return query, append(args, page.Limit, page.Skip)
}

// IsNotFound проверяет является ли ошибка "строка не найдена"
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
