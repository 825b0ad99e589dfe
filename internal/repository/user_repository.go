package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const userColumns = `id, username, email, phone, password_hash, display_name, subjects, levels,
	gender, address, bio, role, status, balance, telegram_id, created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Subjects,
		&user.Levels,
		&user.Gender,
		&user.Address,
		&user.Bio,
		&user.Role,
		&user.Status,
		&user.Balance,
		&user.TelegramID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, email, phone, password_hash, display_name, subjects, levels,
			gender, address, bio, role, status, balance, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	err := r.QueryRow(
		ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.DisplayName,
		nonNil(user.Subjects),
		nonNil(user.Levels),
		user.Gender,
		user.Address,
		user.Bio,
		user.Role,
		user.Status,
		user.Balance,
		user.TelegramID,
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByUsername получает пользователя по логину
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.QueryRow(ctx, query, username))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// UpdateProfile обновляет данные профиля (без баланса, роли и статуса)
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, phone = $2, display_name = $3, subjects = $4, levels = $5,
			gender = $6, address = $7, bio = $8, telegram_id = $9
		WHERE id = $10
	`

	return r.ExecOne(ctx, "update user profile", query,
		user.Email,
		user.Phone,
		user.DisplayName,
		nonNil(user.Subjects),
		nonNil(user.Levels),
		user.Gender,
		user.Address,
		user.Bio,
		user.TelegramID,
		user.ID,
	)
}

// UpdateStatus обновляет статус верификации
func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	query := `UPDATE users SET status = $1 WHERE id = $2`
	return r.ExecOne(ctx, "update user status", query, status, id)
}

// ListByStatus получает пользователей с указанным статусом
func (r *UserRepository) ListByStatus(ctx context.Context, status model.UserStatus, page model.Page) ([]*model.User, error) {
	query, args := base.Paginate(
		`SELECT `+userColumns+` FROM users WHERE status = $1 ORDER BY created_at`,
		[]interface{}{status}, page,
	)

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users by status: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Count возвращает количество пользователей
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// DebitBalance атомарно списывает amount, только если хватает средств
func (r *UserRepository) DebitBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance - $1
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.QueryRow(ctx, query, amount, id).Scan(&balance)
	if err != nil {
		if base.IsNotFound(err) {
			return decimal.Zero, fmt.Errorf("debit balance: %w", base.ErrConditionFailed)
		}
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}

	return balance, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
