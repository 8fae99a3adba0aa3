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
)

var (
	ErrInvalidCreditAmount = errors.New("invalid credit amount")
)

// LedgerService описывает операции чтения реестра и внешние зачисления.
type LedgerService interface {
	GetBalance(ctx context.Context, principal models.Principal) (*models.BalanceResponse, error)
	GetTransactions(ctx context.Context, principal models.Principal) ([]*models.Transaction, error)
	Credit(ctx context.Context, principal models.Principal, userID uuid.UUID, amount decimal.Decimal) error
}

// LedgerServiceImpl реализует LedgerService.
type LedgerServiceImpl struct {
	txRunner           TxRunner
	walletStorage      WalletStorage
	transactionStorage TransactionStorage
	notifier           notify.Notifier
}

// NewLedgerService создаёт сервис реестра.
func NewLedgerService(txRunner TxRunner, walletStorage WalletStorage, transactionStorage TransactionStorage, notifier notify.Notifier) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRunner:           txRunner,
		walletStorage:      walletStorage,
		transactionStorage: transactionStorage,
		notifier:           notifier,
	}
}

// GetBalance возвращает доступный и зарезервированный балансы.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, principal models.Principal) (*models.BalanceResponse, error) {
	wallet, err := s.walletStorage.GetWallet(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			return nil, storage.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	available, _ := wallet.Available.Float64()
	pending, _ := wallet.Pending.Float64()

	return &models.BalanceResponse{
		Available: available,
		Pending:   pending,
	}, nil
}

// GetTransactions возвращает историю движений пользователя.
func (s *LedgerServiceImpl) GetTransactions(ctx context.Context, principal models.Principal) ([]*models.Transaction, error) {
	return s.transactionStorage.GetByUserID(ctx, principal.UserID)
}

// Credit зачисляет средства на кошелёк пользователя (внешнее
// пополнение: выплата за заказ, корректировка). Только администратор.
func (s *LedgerServiceImpl) Credit(ctx context.Context, principal models.Principal, userID uuid.UUID, amount decimal.Decimal) error {
	if !principal.IsAdmin {
		return ErrForbidden
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidCreditAmount
	}

	err := s.txRunner.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.walletStorage.CreditTx(ctx, tx, userID, amount); err != nil {
			return err
		}

		record := &models.Transaction{
			UserID: userID,
			Type:   models.TransactionTypeCredit,
			Amount: amount,
			Status: models.TransactionStatusProcessed,
		}
		return s.transactionStorage.CreateTx(ctx, tx, record)
	})
	if err != nil {
		return err
	}

	s.notifier.Emit(ctx, notify.Event{
		Type:       notify.EventWalletCredited,
		UserID:     userID,
		Amount:     amount,
		OccurredAt: time.Now(),
	})

	return nil
}
