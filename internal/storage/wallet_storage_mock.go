package storage

import (
	"context"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MockWalletStorage - мок для тестов.
type MockWalletStorage struct {
	CreateFunc     func(ctx context.Context, userID uuid.UUID) error
	GetWalletFunc  func(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	ReserveFunc    func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	ReserveTxFunc  func(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	ReleaseFunc    func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	ReleaseTxFunc  func(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	FinalizeFunc   func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	FinalizeTxFunc func(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	CreditFunc     func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	CreditTxFunc   func(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
}

func (m *MockWalletStorage) Create(ctx context.Context, userID uuid.UUID) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID)
	}
	return nil
}

func (m *MockWalletStorage) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if m.GetWalletFunc != nil {
		return m.GetWalletFunc(ctx, userID)
	}
	return nil, ErrWalletNotFound
}

func (m *MockWalletStorage) Reserve(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) ReserveTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if m.ReserveTxFunc != nil {
		return m.ReserveTxFunc(ctx, tx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) Release(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) ReleaseTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if m.ReleaseTxFunc != nil {
		return m.ReleaseTxFunc(ctx, tx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) Finalize(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) FinalizeTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if m.FinalizeTxFunc != nil {
		return m.FinalizeTxFunc(ctx, tx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if m.CreditFunc != nil {
		return m.CreditFunc(ctx, userID, amount)
	}
	return nil
}

func (m *MockWalletStorage) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if m.CreditTxFunc != nil {
		return m.CreditTxFunc(ctx, tx, userID, amount)
	}
	return nil
}
