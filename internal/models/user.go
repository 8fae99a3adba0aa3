package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole определяет роль пользователя в системе.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User представляет пользователя системы.
type User struct {
	ID           uuid.UUID `db:"id"`
	Login        string    `db:"login"`
	PasswordHash string    `db:"password_hash"`
	Role         UserRole  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Principal - аутентифицированный субъект запроса.
// Формируется middleware после проверки токена и передаётся в сервисы;
// сервисы сами не проверяют учётные данные.
type Principal struct {
	UserID  uuid.UUID
	Login   string
	IsAdmin bool
}

// RegisterRequest - запрос на регистрацию пользователя.
type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginRequest - запрос на аутентификацию пользователя.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}
