package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyCredentials   = errors.New("login and password are required")
)

// UserService определяет интерфейс для работы с пользователями.
type UserService interface {
	Register(ctx context.Context, login, password string) (*models.User, string, error)
	Login(ctx context.Context, login, password string) (*models.User, string, error)
}

// UserServiceImpl реализует UserService.
type UserServiceImpl struct {
	userStorage     UserStorage
	walletStorage   WalletStorage
	jwtSecret       string
	tokenExpiration time.Duration
}

// NewUserService создаёт новый экземпляр UserService.
func NewUserService(userStorage UserStorage, walletStorage WalletStorage, jwtSecret string, tokenExpiration time.Duration) *UserServiceImpl {
	return &UserServiceImpl{
		userStorage:     userStorage,
		walletStorage:   walletStorage,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
	}
}

// Register регистрирует нового пользователя и заводит ему кошелёк.
func (s *UserServiceImpl) Register(ctx context.Context, login, password string) (*models.User, string, error) {
	if login == "" || password == "" {
		return nil, "", ErrEmptyCredentials
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}

	if err := s.userStorage.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrLoginExists) {
			return nil, "", storage.ErrLoginExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Кошелёк заводится сразу, чтобы GetWallet не падал для новых
	// пользователей
	if err := s.walletStorage.Create(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to create wallet: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login аутентифицирует пользователя.
func (s *UserServiceImpl) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	if login == "" || password == "" {
		return nil, "", ErrEmptyCredentials
	}

	user, err := s.userStorage.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// generateToken генерирует JWT токен для пользователя.
func (s *UserServiceImpl) generateToken(user *models.User) (string, error) {
	exp := s.tokenExpiration
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return auth.GenerateToken(user, s.jwtSecret, exp)
}
