package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvariantViolation означает, что зарезервировано меньше, чем
	// пытаются вернуть или списать. При корректном workflow такого не
	// бывает - это сигнал о баге, а не пользовательская ошибка.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// PostgresWalletStorage реализует WalletStorage для PostgreSQL.
// Все мутации выполняются как единый атомарный цикл
// SELECT ... FOR UPDATE -> проверка -> UPDATE внутри транзакции,
// поэтому конкурентные заявки одного пользователя сериализуются
// на блокировке строки кошелька. Кошельки разных пользователей
// друг другу не мешают.
type PostgresWalletStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresWalletStorage создаёт новый экземпляр PostgresWalletStorage.
func NewPostgresWalletStorage(pool *pgxpool.Pool) *PostgresWalletStorage {
	return &PostgresWalletStorage{pool: pool}
}

// Create создаёт кошелёк с нулевым балансом.
// Вызывается при регистрации пользователя.
func (s *PostgresWalletStorage) Create(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO wallets (user_id, available, pending, updated_at)
		VALUES ($1, 0, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWallet возвращает кошелёк пользователя.
func (s *PostgresWalletStorage) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	query := `
		SELECT user_id, available, pending, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	wallet := &models.Wallet{}
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Available,
		&wallet.Pending,
		&wallet.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return wallet, nil
}

// Reserve резервирует средства под заявку на вывод.
func (s *PostgresWalletStorage) Reserve(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.ReserveTx(ctx, tx, userID, amount)
	})
}

// ReserveTx резервирует средства в рамках переданной транзакции:
// available -= amount, pending += amount.
func (s *PostgresWalletStorage) ReserveTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	available, _, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	if available.LessThan(amount) {
		return ErrInsufficientBalance
	}

	query := `
		UPDATE wallets
		SET available = available - $1, pending = pending + $1, updated_at = NOW()
		WHERE user_id = $2
	`
	if _, err := tx.Exec(ctx, query, amount, userID); err != nil {
		return fmt.Errorf("failed to reserve funds: %w", err)
	}

	return nil
}

// Release возвращает зарезервированные средства обратно на баланс.
func (s *PostgresWalletStorage) Release(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.ReleaseTx(ctx, tx, userID, amount)
	})
}

// ReleaseTx возвращает резерв в рамках переданной транзакции:
// pending -= amount, available += amount.
func (s *PostgresWalletStorage) ReleaseTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	_, pending, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	if pending.LessThan(amount) {
		return fmt.Errorf("%w: pending %s < release %s", ErrInvariantViolation, pending, amount)
	}

	query := `
		UPDATE wallets
		SET pending = pending - $1, available = available + $1, updated_at = NOW()
		WHERE user_id = $2
	`
	if _, err := tx.Exec(ctx, query, amount, userID); err != nil {
		return fmt.Errorf("failed to release funds: %w", err)
	}

	return nil
}

// Finalize списывает резерв безвозвратно - средства покинули платформу.
func (s *PostgresWalletStorage) Finalize(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.FinalizeTx(ctx, tx, userID, amount)
	})
}

// FinalizeTx списывает резерв в рамках переданной транзакции:
// pending -= amount.
func (s *PostgresWalletStorage) FinalizeTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	_, pending, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	if pending.LessThan(amount) {
		return fmt.Errorf("%w: pending %s < finalize %s", ErrInvariantViolation, pending, amount)
	}

	query := `
		UPDATE wallets
		SET pending = pending - $1, updated_at = NOW()
		WHERE user_id = $2
	`
	if _, err := tx.Exec(ctx, query, amount, userID); err != nil {
		return fmt.Errorf("failed to finalize funds: %w", err)
	}

	return nil
}

// Credit зачисляет средства на доступный баланс (внешнее пополнение).
func (s *PostgresWalletStorage) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.CreditTx(ctx, tx, userID, amount)
	})
}

// CreditTx зачисляет средства в рамках переданной транзакции.
func (s *PostgresWalletStorage) CreditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if _, _, err := lockWallet(ctx, tx, userID); err != nil {
		return err
	}

	query := `
		UPDATE wallets
		SET available = available + $1, updated_at = NOW()
		WHERE user_id = $2
	`
	if _, err := tx.Exec(ctx, query, amount, userID); err != nil {
		return fmt.Errorf("failed to credit funds: %w", err)
	}

	return nil
}

// lockWallet берёт блокировку строки кошелька и возвращает текущие балансы.
func lockWallet(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (available, pending decimal.Decimal, err error) {
	query := `SELECT available, pending FROM wallets WHERE user_id = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, query, userID).Scan(&available, &pending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return available, pending, ErrWalletNotFound
		}
		return available, pending, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return available, pending, nil
}

// inTx выполняет fn внутри транзакции.
func (s *PostgresWalletStorage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
