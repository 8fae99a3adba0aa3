package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/notify"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount      = errors.New("invalid withdrawal amount")
	ErrInvalidBankAccount = errors.New("invalid bank account reference")
	ErrForbidden          = errors.New("forbidden")
	// ErrInvalidStateTransition возвращается при попытке недопустимого
	// перехода; обёртка содержит текущий статус заявки.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// TxRunner выполняет функцию внутри транзакции БД.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// WithdrawalService описывает workflow заявок на вывод средств.
type WithdrawalService interface {
	Create(ctx context.Context, principal models.Principal, bankAccountRef string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error)
	Approve(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	Reject(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	Complete(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	GetForUser(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Withdrawal, error)
	ListForUser(ctx context.Context, principal models.Principal) ([]*models.Withdrawal, error)
	ListAll(ctx context.Context, principal models.Principal, status models.WithdrawalStatus) ([]*models.Withdrawal, error)
}

// WithdrawalServiceImpl реализует workflow поверх реестра средств,
// хранилища заявок и журнала движений. Средства резервируются в момент
// создания заявки (эскроу): доступный баланс всегда честно показывает,
// сколько пользователь ещё может потратить или вывести. Approve реестр
// не трогает; Reject и Complete - единственные действия администратора,
// двигающие деньги, и они достижимы из разных предсостояний.
type WithdrawalServiceImpl struct {
	txRunner           TxRunner
	walletStorage      WalletStorage
	withdrawalStorage  WithdrawalStorage
	transactionStorage TransactionStorage
	notifier           notify.Notifier
	logger             *zap.Logger
	defaultCurrency    string
}

// NewWithdrawalService создаёт workflow заявок на вывод.
func NewWithdrawalService(
	txRunner TxRunner,
	walletStorage WalletStorage,
	withdrawalStorage WithdrawalStorage,
	transactionStorage TransactionStorage,
	notifier notify.Notifier,
	logger *zap.Logger,
	defaultCurrency string,
) *WithdrawalServiceImpl {
	return &WithdrawalServiceImpl{
		txRunner:           txRunner,
		walletStorage:      walletStorage,
		withdrawalStorage:  withdrawalStorage,
		transactionStorage: transactionStorage,
		notifier:           notifier,
		logger:             logger,
		defaultCurrency:    defaultCurrency,
	}
}

// Create создаёт заявку на вывод: резервирует средства, пишет заявку
// в статусе PENDING и исходную запись журнала одной транзакцией БД.
func (s *WithdrawalServiceImpl) Create(ctx context.Context, principal models.Principal, bankAccountRef string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if bankAccountRef == "" {
		return nil, ErrInvalidBankAccount
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	withdrawal := &models.Withdrawal{
		ID:             uuid.New(),
		UserID:         principal.UserID,
		BankAccountRef: bankAccountRef,
		Amount:         amount,
		Currency:       currency,
		Status:         models.WithdrawalStatusPending,
		Note:           note,
	}

	err := s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.walletStorage.ReserveTx(ctx, tx, principal.UserID, amount); err != nil {
			return err
		}

		if err := s.withdrawalStorage.CreateTx(ctx, tx, withdrawal); err != nil {
			return err
		}

		record := &models.Transaction{
			UserID:      principal.UserID,
			Type:        models.TransactionTypeReserve,
			Amount:      amount.Neg(),
			Status:      models.TransactionStatusProcessed,
			ReferenceID: &withdrawal.ID,
		}
		return s.transactionStorage.CreateTx(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, notify.EventWithdrawalCreated, withdrawal)

	return withdrawal, nil
}

// Approve одобряет заявку. Реестр средств не затрагивается: резерв
// уже взят при создании, одобрение лишь продвигает статус.
func (s *WithdrawalServiceImpl) Approve(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	return s.transition(ctx, principal, id, adminNote,
		models.WithdrawalStatusPending,
		models.WithdrawalStatusApproved,
		notify.EventWithdrawalApproved,
		nil,
	)
}

// Reject отклоняет заявку и возвращает резерв на доступный баланс.
func (s *WithdrawalServiceImpl) Reject(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	return s.transition(ctx, principal, id, adminNote,
		models.WithdrawalStatusPending,
		models.WithdrawalStatusRejected,
		notify.EventWithdrawalRejected,
		func(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
			if err := s.walletStorage.ReleaseTx(ctx, tx, w.UserID, w.Amount); err != nil {
				return err
			}
			return s.transactionStorage.UpdateStatusByReferenceTx(ctx, tx, w.ID,
				models.TransactionTypeRelease, models.TransactionStatusCancelled)
		},
	)
}

// Complete завершает одобренную заявку: средства покинули платформу.
func (s *WithdrawalServiceImpl) Complete(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	return s.transition(ctx, principal, id, adminNote,
		models.WithdrawalStatusApproved,
		models.WithdrawalStatusCompleted,
		notify.EventWithdrawalCompleted,
		func(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
			if err := s.walletStorage.FinalizeTx(ctx, tx, w.UserID, w.Amount); err != nil {
				return err
			}
			return s.transactionStorage.UpdateStatusByReferenceTx(ctx, tx, w.ID,
				models.TransactionTypeComplete, models.TransactionStatusCompleted)
		},
	)
}

// transition выполняет переход состояния заявки. Статус проверяется
// под блокировкой строки заявки, поэтому конкурирующие действия
// администраторов над одной заявкой сериализуются. Повтор уже
// применённого перехода (статус равен целевому) - no-op, возвращающий
// текущую запись; реестр при этом не трогается.
func (s *WithdrawalServiceImpl) transition(
	ctx context.Context,
	principal models.Principal,
	id uuid.UUID,
	adminNote string,
	from, to models.WithdrawalStatus,
	eventType notify.EventType,
	ledgerEffect func(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error,
) (*models.Withdrawal, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}

	var (
		result  *models.Withdrawal
		applied bool
	)

	err := s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		withdrawal, err := s.withdrawalStorage.GetByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if withdrawal.Status == to {
			// повторное нажатие - возвращаем текущее состояние
			result = withdrawal
			return nil
		}
		if withdrawal.Status != from {
			if withdrawal.Status.Terminal() {
				return fmt.Errorf("%w: request already %s", ErrInvalidStateTransition, withdrawal.Status)
			}
			return fmt.Errorf("%w: request is %s", ErrInvalidStateTransition, withdrawal.Status)
		}

		if ledgerEffect != nil {
			if err := ledgerEffect(ctx, tx, withdrawal); err != nil {
				if errors.Is(err, storage.ErrInvariantViolation) {
					s.logger.Error("ledger invariant violation detected",
						zap.String("request_id", withdrawal.ID.String()),
						zap.String("user_id", withdrawal.UserID.String()),
						zap.Error(err),
					)
				}
				return err
			}
		}

		now := time.Now()
		withdrawal.Status = to
		withdrawal.AdminNote = adminNote
		withdrawal.ProcessedBy = &principal.UserID
		if withdrawal.ProcessedAt == nil {
			withdrawal.ProcessedAt = &now
		}
		if to == models.WithdrawalStatusCompleted {
			withdrawal.CompletedAt = &now
		}

		if err := s.withdrawalStorage.UpdateStatusTx(ctx, tx, withdrawal); err != nil {
			return err
		}

		result = withdrawal
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if applied {
		s.emit(ctx, eventType, result)
	}

	return result, nil
}

// GetForUser возвращает заявку владельцу или администратору.
// Чужая заявка для обычного пользователя неотличима от несуществующей.
func (s *WithdrawalServiceImpl) GetForUser(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalStorage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.UserID != principal.UserID && !principal.IsAdmin {
		return nil, storage.ErrWithdrawalNotFound
	}
	return withdrawal, nil
}

// ListForUser возвращает заявки владельца.
func (s *WithdrawalServiceImpl) ListForUser(ctx context.Context, principal models.Principal) ([]*models.Withdrawal, error) {
	return s.withdrawalStorage.GetByUserID(ctx, principal.UserID)
}

// ListAll возвращает все заявки; доступно только администратору.
func (s *WithdrawalServiceImpl) ListAll(ctx context.Context, principal models.Principal, status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	if !principal.IsAdmin {
		return nil, ErrForbidden
	}
	return s.withdrawalStorage.GetAll(ctx, status)
}

// emit отправляет доменное событие после коммита. Доставка best-effort:
// ошибка диспетчера не откатывает уже применённый переход.
func (s *WithdrawalServiceImpl) emit(ctx context.Context, eventType notify.EventType, w *models.Withdrawal) {
	event := notify.Event{
		Type:       eventType,
		UserID:     w.UserID,
		RequestID:  w.ID,
		Amount:     w.Amount,
		Currency:   w.Currency,
		OccurredAt: time.Now(),
	}
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit domain event",
			zap.String("event", string(eventType)),
			zap.Error(err),
		)
	}
}
