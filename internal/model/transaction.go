package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TransactionStatusPaid = "paid"

// Transaction неизменяемая запись леджера. Существование записи означает,
// что баланс плательщика был уменьшен ровно на AmountMoney.
type Transaction struct {
	ID                uuid.UUID       `json:"id"`
	PostID            uuid.UUID       `json:"post_id"`
	PayerID           uuid.UUID       `json:"payer_id"`
	AmountMoney       decimal.Decimal `json:"amount_money"`
	TransactionStatus string          `json:"transaction_status"`
	CreatedAt         time.Time       `json:"created_at"`
}
