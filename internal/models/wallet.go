package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet представляет кошелёк пользователя: доступные средства
// и средства, зарезервированные под заявки на вывод.
// Сумма Available + Pending меняется только при завершении вывода
// (деньги ушли с платформы) или при внешнем пополнении.
type Wallet struct {
	UserID    uuid.UUID       `db:"user_id"`
	Available decimal.Decimal `db:"available"`
	Pending   decimal.Decimal `db:"pending"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// BalanceResponse - ответ с балансом пользователя.
type BalanceResponse struct {
	Available float64 `json:"available"`
	Pending   float64 `json:"pending"`
}
