package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
)

const withdrawalColumns = `
	id, user_id, bank_account_ref, amount, currency, status,
	note, admin_note, processed_by, created_at, processed_at, completed_at
`

// PostgresWithdrawalStorage реализует WithdrawalStorage для PostgreSQL.
type PostgresWithdrawalStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresWithdrawalStorage создаёт новый экземпляр.
func NewPostgresWithdrawalStorage(pool *pgxpool.Pool) *PostgresWithdrawalStorage {
	return &PostgresWithdrawalStorage{pool: pool}
}

// CreateTx создаёт заявку в рамках переданной транзакции.
func (s *PostgresWithdrawalStorage) CreateTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = models.WithdrawalStatusPending
	}

	query := `
		INSERT INTO withdrawal_requests
			(id, user_id, bank_account_ref, amount, currency, status, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		w.ID, w.UserID, w.BankAccountRef, w.Amount, w.Currency, w.Status, w.Note,
	).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (s *PostgresWithdrawalStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`
	return scanWithdrawal(s.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdateTx возвращает заявку, удерживая блокировку строки
// до конца транзакции. Проверка статуса и запись нового статуса
// должны происходить под этой блокировкой.
func (s *PostgresWithdrawalStorage) GetByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`
	return scanWithdrawal(tx.QueryRow(ctx, query, id))
}

// UpdateStatusTx записывает новый статус и метаданные обработки
// в рамках переданной транзакции.
func (s *PostgresWithdrawalStorage) UpdateStatusTx(ctx context.Context, tx pgx.Tx, w *models.Withdrawal) error {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, admin_note = $2, processed_by = $3,
		    processed_at = $4, completed_at = $5
		WHERE id = $6
	`

	result, err := tx.Exec(ctx, query,
		w.Status, w.AdminNote, w.ProcessedBy, w.ProcessedAt, w.CompletedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrWithdrawalNotFound
	}

	return nil
}

// GetByUserID возвращает заявки пользователя, новые первыми.
func (s *PostgresWithdrawalStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Withdrawal, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

// GetAll возвращает все заявки, опционально фильтруя по статусу.
func (s *PostgresWithdrawalStorage) GetAll(ctx context.Context, status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWithdrawal(row rowScanner) (*models.Withdrawal, error) {
	w := &models.Withdrawal{}
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.BankAccountRef,
		&w.Amount,
		&w.Currency,
		&w.Status,
		&w.Note,
		&w.AdminNote,
		&w.ProcessedBy,
		&w.CreatedAt,
		&w.ProcessedAt,
		&w.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
	}
	return w, nil
}

func collectWithdrawals(rows pgx.Rows) ([]*models.Withdrawal, error) {
	var withdrawals []*models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return withdrawals, nil
}
