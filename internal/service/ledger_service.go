package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/metrics"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Точки входа леджера, метка в метриках и логах
const (
	EntryFundPost       = "fund_post"
	EntryPayApplication = "pay_application"
)

// LedgerService списания с баланса и записи в леджер.
// Порядок для обеих точек входа: проверки -> условное списание -> запись транзакции -> смена статусов.
// Компенсаций нет: если после списания что-то упало, это логируется как ошибка.
type LedgerService struct {
	userRepo UserRepository
	postRepo PostRepository
	appRepo  ApplicationRepository
	txRepo   TransactionRepository
	notifier Notifier
	locks    *keyLock
	logger   *zap.Logger
}

func NewLedgerService(
	userRepo UserRepository,
	postRepo PostRepository,
	appRepo ApplicationRepository,
	txRepo TransactionRepository,
	notifier Notifier,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		userRepo: userRepo,
		postRepo: postRepo,
		appRepo:  appRepo,
		txRepo:   txRepo,
		notifier: notifier,
		locks:    newKeyLock(),
		logger:   logger,
	}
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("amount_money must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return invalid("amount_money must have at most 2 decimal places")
	}
	return nil
}

func lockKeys(payerID, postID uuid.UUID) []string {
	return []string{"payer:" + payerID.String(), "post:" + postID.String()}
}

// FundPost автор оплачивает свой пост: inactive -> active
func (s *LedgerService) FundPost(ctx context.Context, actor model.Principal, postID uuid.UUID, amount decimal.Decimal) (*model.Transaction, error) {
	tx, err := s.fundPost(ctx, actor, postID, amount)
	s.record(EntryFundPost, amount, err)
	return tx, err
}

func (s *LedgerService) fundPost(ctx context.Context, actor model.Principal, postID uuid.UUID, amount decimal.Decimal) (*model.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(lockKeys(actor.ID, postID)...)
	defer unlock()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}
	if !actor.Is(post.CreatorID) {
		return nil, forbidden("pay for this post")
	}
	if post.IsActive() {
		return nil, conflict("post is already active")
	}

	tx, err := s.debit(ctx, actor.ID, post.ID, amount)
	if err != nil {
		return nil, err
	}

	activated, err := s.postRepo.ActivateIfInactive(ctx, post.ID)
	if err != nil || !activated {
		s.logger.Error("Post not activated after payment",
			zap.String("post_id", post.ID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Bool("activated", activated),
			zap.Error(err),
		)
		if err != nil {
			return nil, fmt.Errorf("activate post: %w", err)
		}
	}

	s.logger.Info("Post funded",
		zap.String("post_id", post.ID.String()),
		zap.String("payer_id", actor.ID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)

	return tx, nil
}

// PayApplication репетитор оплачивает одобренную заявку:
// accepted -> accepted_and_paid, пост получает репетитора и становится active
func (s *LedgerService) PayApplication(ctx context.Context, actor model.Principal, applicationID uuid.UUID, amount decimal.Decimal) (*model.Transaction, error) {
	tx, err := s.payApplication(ctx, actor, applicationID, amount)
	s.record(EntryPayApplication, amount, err)
	return tx, err
}

func (s *LedgerService) payApplication(ctx context.Context, actor model.Principal, applicationID uuid.UUID, amount decimal.Decimal) (*model.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, notFound("application")
	}
	if !actor.Is(app.TutorID) {
		return nil, forbidden("pay for this application")
	}

	unlock := s.locks.Lock(lockKeys(actor.ID, app.PostID)...)
	defer unlock()

	// Перечитываем под блокировкой: статус мог смениться, пока ждали
	app, err = s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app == nil {
		return nil, notFound("application")
	}
	switch {
	case app.ApplicationStatus == model.ApplicationStatusAcceptedAndPaid:
		return nil, conflict("application is already paid")
	case !app.IsAccepted():
		return nil, conflict("application must be accepted before payment, current status %s", app.ApplicationStatus)
	}

	post, err := s.postRepo.GetByID(ctx, app.PostID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, notFound("post")
	}
	if post.HasTutor() {
		return nil, conflict("post already has an assigned tutor")
	}

	tx, err := s.debit(ctx, actor.ID, post.ID, amount)
	if err != nil {
		return nil, err
	}

	advanced, err := s.appRepo.TransitionStatus(ctx, app.ID, model.ApplicationStatusAccepted, model.ApplicationStatusAcceptedAndPaid)
	if err != nil || !advanced {
		s.logger.Error("Application not advanced after payment",
			zap.String("application_id", app.ID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Bool("advanced", advanced),
			zap.Error(err),
		)
		if err != nil {
			return nil, fmt.Errorf("advance application: %w", err)
		}
	}

	assigned, err := s.postRepo.AssignTutor(ctx, post.ID, actor.ID)
	if err != nil || !assigned {
		s.logger.Error("Tutor not assigned after payment",
			zap.String("post_id", post.ID.String()),
			zap.String("transaction_id", tx.ID.String()),
			zap.Bool("assigned", assigned),
			zap.Error(err),
		)
		if err != nil {
			return nil, fmt.Errorf("assign tutor: %w", err)
		}
	}

	s.logger.Info("Application paid",
		zap.String("application_id", app.ID.String()),
		zap.String("post_id", post.ID.String()),
		zap.String("tutor_id", actor.ID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)

	s.notifyPaid(ctx, post, actor.ID, app.ID)

	return tx, nil
}

// debit условное списание и запись транзакции
func (s *LedgerService) debit(ctx context.Context, payerID, postID uuid.UUID, amount decimal.Decimal) (*model.Transaction, error) {
	balance, err := s.userRepo.DebitBalance(ctx, payerID, amount)
	if errors.Is(err, base.ErrConditionFailed) {
		return nil, s.insufficient(ctx, payerID, amount)
	}
	if err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	tx := &model.Transaction{
		PostID:            postID,
		PayerID:           payerID,
		AmountMoney:       amount,
		TransactionStatus: model.TransactionStatusPaid,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		s.logger.Error("Balance debited but transaction not recorded",
			zap.String("payer_id", payerID.String()),
			zap.String("post_id", postID.String()),
			zap.String("amount", amount.StringFixed(2)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.Info("Balance debited",
		zap.String("payer_id", payerID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", balance.StringFixed(2)),
	)

	return tx, nil
}

// insufficient различает "нет денег" и "нет пользователя"
func (s *LedgerService) insufficient(ctx context.Context, payerID uuid.UUID, amount decimal.Decimal) error {
	payer, err := s.userRepo.GetByID(ctx, payerID)
	if err != nil {
		return fmt.Errorf("get payer: %w", err)
	}
	if payer == nil {
		return notFound("user")
	}
	return fmt.Errorf("%w: your balance: %s, required: %s",
		ErrInsufficientBalance, payer.Balance.StringFixed(2), amount.StringFixed(2))
}

func (s *LedgerService) notifyPaid(ctx context.Context, post *model.Post, tutorID, appID uuid.UUID) {
	parent, err := s.userRepo.GetByID(ctx, post.CreatorID)
	if err != nil || parent == nil {
		s.logger.Warn("Skip payment notification: post creator not loaded",
			zap.String("creator_id", post.CreatorID.String()),
			zap.Error(err),
		)
		return
	}

	data := map[string]string{
		notify.CtxPostID:        post.ID.String(),
		notify.CtxPostTitle:     post.Title,
		notify.CtxApplicationID: appID.String(),
	}
	if tutor, err := s.userRepo.GetByID(ctx, tutorID); err == nil && tutor != nil {
		data[notify.CtxTutorName] = displayName(tutor)
	}

	s.notifier.Notify(notify.NewEvent(notify.KindApplicationPaid, recipientOf(parent), data))
}

func (s *LedgerService) record(entry string, amount decimal.Decimal, err error) {
	if err != nil {
		metrics.RecordPayment(entry, metrics.OutcomeFailed)
		return
	}
	metrics.RecordPayment(entry, metrics.OutcomeOK)
	metrics.RecordDebit(entry, amount.InexactFloat64())
}

// ListMine записи леджера вызывающего, status = "" - все
func (s *LedgerService) ListMine(ctx context.Context, actor model.Principal, status string, page model.Page) ([]*model.Transaction, error) {
	if isBlank(status) {
		status = ""
	}

	txs, err := s.txRepo.ListByPayer(ctx, actor.ID, status, page)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return nonEmpty(txs, "transactions")
}
