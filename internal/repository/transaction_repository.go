package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository леджер: только INSERT и SELECT
type TransactionRepository struct {
	*base.Repository
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет запись в леджер
func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, post_id, payer_id, amount_money, transaction_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	err := r.QueryRow(ctx, query, tx.ID, tx.PostID, tx.PayerID, tx.AmountMoney, tx.TransactionStatus).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

// ListByPayer получает транзакции плательщика, status = "" - все
func (r *TransactionRepository) ListByPayer(ctx context.Context, payerID uuid.UUID, status string, page model.Page) ([]*model.Transaction, error) {
	query := `
		SELECT id, post_id, payer_id, amount_money, transaction_status, created_at
		FROM transactions
		WHERE payer_id = $1`
	args := []interface{}{payerID}

	if status != "" {
		query += ` AND transaction_status = $2`
		args = append(args, status)
	}

	query, args = base.Paginate(query+` ORDER BY created_at DESC`, args, page)

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by payer: %w", err)
	}
	defer rows.Close()

	var txs []*model.Transaction
	for rows.Next() {
		var tx model.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.PostID,
			&tx.PayerID,
			&tx.AmountMoney,
			&tx.TransactionStatus,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}
