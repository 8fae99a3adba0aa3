package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus описывает статус заявки на вывод средств.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "PENDING"
	WithdrawalStatusApproved  WithdrawalStatus = "APPROVED"
	WithdrawalStatusRejected  WithdrawalStatus = "REJECTED"
	WithdrawalStatusCompleted WithdrawalStatus = "COMPLETED"
)

// Terminal сообщает, является ли статус конечным.
// Из конечного статуса переходы запрещены.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusRejected || s == WithdrawalStatusCompleted
}

// Withdrawal представляет заявку пользователя на вывод средств.
// Создаётся пользователем в статусе PENDING, дальше заявку ведёт
// только workflow по действиям администратора.
type Withdrawal struct {
	ID             uuid.UUID        `db:"id"`
	UserID         uuid.UUID        `db:"user_id"`
	BankAccountRef string           `db:"bank_account_ref"`
	Amount         decimal.Decimal  `db:"amount"`
	Currency       string           `db:"currency"`
	Status         WithdrawalStatus `db:"status"`
	Note           string           `db:"note"`
	AdminNote      string           `db:"admin_note"`
	ProcessedBy    *uuid.UUID       `db:"processed_by"`
	CreatedAt      time.Time        `db:"created_at"`
	ProcessedAt    *time.Time       `db:"processed_at"`
	CompletedAt    *time.Time       `db:"completed_at"`
}

// CreateWithdrawalRequest DTO для создания заявки на вывод.
type CreateWithdrawalRequest struct {
	BankAccountRef string  `json:"bank_account_ref"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Note           string  `json:"note"`
}

// AdminActionRequest DTO для действий администратора над заявкой.
type AdminActionRequest struct {
	AdminNote string `json:"admin_note"`
}

// WithdrawalResponse DTO для ответа по заявке.
type WithdrawalResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	BankAccountRef string    `json:"bank_account_ref"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	Note           string    `json:"note,omitempty"`
	AdminNote      string    `json:"admin_note,omitempty"`
	CreatedAt      string    `json:"created_at"`
	ProcessedAt    *string   `json:"processed_at,omitempty"`
	CompletedAt    *string   `json:"completed_at,omitempty"`
}
