package storage

import (
	"context"
	"fmt"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTransactionStorage реализует TransactionStorage для PostgreSQL.
// Журнал append-only: единственное разрешённое обновление - зеркалирование
// терминального статуса заявки в исходной записи резервирования.
type PostgresTransactionStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresTransactionStorage создаёт новый экземпляр.
func NewPostgresTransactionStorage(pool *pgxpool.Pool) *PostgresTransactionStorage {
	return &PostgresTransactionStorage{pool: pool}
}

// CreateTx добавляет запись в журнал в рамках переданной транзакции.
func (s *PostgresTransactionStorage) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, status, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		t.UserID, t.Type, t.Amount, t.Status, t.ReferenceID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	return nil
}

// UpdateStatusByReferenceTx зеркалирует терминальный статус заявки
// в её исходной записи резервирования.
func (s *PostgresTransactionStorage) UpdateStatusByReferenceTx(ctx context.Context, tx pgx.Tx, referenceID uuid.UUID, txType models.TransactionType, status models.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET type = $1, status = $2
		WHERE reference_id = $3 AND type = $4
	`

	_, err := tx.Exec(ctx, query, txType, status, referenceID, models.TransactionTypeReserve)
	if err != nil {
		return fmt.Errorf("failed to update transaction record: %w", err)
	}

	return nil
}

// GetByUserID возвращает историю движений пользователя, новые первыми.
func (s *PostgresTransactionStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, reference_id, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return transactions, nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Type,
		&t.Amount,
		&t.Status,
		&t.ReferenceID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return t, nil
}
