package services

import (
	"context"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletStorage определяет интерфейс реестра средств.
// Мутации атомарны на уровне кошелька одного пользователя;
// Tx-варианты позволяют workflow объединять изменение баланса,
// статуса заявки и записи журнала в одну транзакцию БД.
type WalletStorage interface {
	Create(ctx context.Context, userID uuid.UUID) error
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Reserve(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	ReserveTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	Release(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	ReleaseTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	Finalize(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	FinalizeTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
}

// WithdrawalStorage определяет интерфейс хранилища заявок на вывод.
type WithdrawalStorage interface {
	CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Withdrawal, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error)
	GetAll(ctx context.Context, status models.WithdrawalStatus) ([]*models.Withdrawal, error)
}

// TransactionStorage определяет интерфейс журнала движений средств.
type TransactionStorage interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
	UpdateStatusByReferenceTx(ctx context.Context, tx pgx.Tx, referenceID uuid.UUID, txType models.TransactionType, status models.TransactionStatus) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
