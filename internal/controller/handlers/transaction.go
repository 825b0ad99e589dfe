package handlers

import (
	"net/http"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledger *service.LedgerService
	pager  common.Pager
	logger *zap.Logger
}

func NewTransactionHandler(ledger *service.LedgerService, pager common.Pager, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, pager: pager, logger: logger}
}

// AddTransaction POST /api/transaction/add-transaction, оплата поста его автором
func (h *TransactionHandler) AddTransaction(c *gin.Context) {
	var in struct {
		PostID      uuid.UUID       `json:"post_id"`
		AmountMoney decimal.Decimal `json:"amount_money"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.PostID, "post_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	tx, err := h.ledger.FundPost(c.Request.Context(), mustPrincipal(c), in.PostID, in.AmountMoney)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// PayApplication POST /api/transaction/pay-application
func (h *TransactionHandler) PayApplication(c *gin.Context) {
	var in struct {
		ApplicationID uuid.UUID       `json:"application_id"`
		AmountMoney   decimal.Decimal `json:"amount_money"`
	}
	if err := bindWithID(c, &in, func() error { return common.RequireID(in.ApplicationID, "application_id") }); err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	tx, err := h.ledger.PayApplication(c.Request.Context(), mustPrincipal(c), in.ApplicationID, in.AmountMoney)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// ListMine GET /api/transaction/me/get-transaction?transaction_status=&skip=&limit=
func (h *TransactionHandler) ListMine(c *gin.Context) {
	page, err := h.pager.Page(c)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}

	txs, err := h.ledger.ListMine(c.Request.Context(), mustPrincipal(c), c.Query("transaction_status"), page)
	if err != nil {
		common.WriteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}
