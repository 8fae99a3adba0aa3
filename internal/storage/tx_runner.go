package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTxRunner выполняет функцию внутри транзакции pgxpool.
// Сервисы получают его как интерфейс, чтобы workflow можно было
// тестировать без реальной базы.
type PgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewPgxTxRunner создаёт новый экземпляр PgxTxRunner.
func NewPgxTxRunner(pool *pgxpool.Pool) *PgxTxRunner {
	return &PgxTxRunner{pool: pool}
}

// InTx начинает транзакцию, выполняет fn и коммитит при успехе.
// При ошибке транзакция откатывается целиком.
func (r *PgxTxRunner) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
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
