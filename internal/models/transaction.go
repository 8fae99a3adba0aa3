package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType описывает тип движения средств.
type TransactionType string

const (
	TransactionTypeReserve  TransactionType = "reserve"
	TransactionTypeRelease  TransactionType = "release"
	TransactionTypeComplete TransactionType = "complete"
	TransactionTypeCredit   TransactionType = "credit"
)

// TransactionStatus описывает статус записи в журнале.
type TransactionStatus string

const (
	TransactionStatusProcessed TransactionStatus = "processed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction - запись в журнале движений средств (append-only).
// Обновляется только зеркалирование терминального статуса заявки
// в исходной записи резервирования.
type Transaction struct {
	ID          int64             `db:"id"`
	UserID      uuid.UUID         `db:"user_id"`
	Type        TransactionType   `db:"type"`
	Amount      decimal.Decimal   `db:"amount"`
	Status      TransactionStatus `db:"status"`
	ReferenceID *uuid.UUID        `db:"reference_id"`
	CreatedAt   time.Time         `db:"created_at"`
}

// TransactionResponse DTO для истории движений.
type TransactionResponse struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	Status      string     `json:"status"`
	ReferenceID *uuid.UUID `json:"reference_id,omitempty"`
	CreatedAt   string     `json:"created_at"`
}
