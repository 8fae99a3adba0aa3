package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
)

func newTestUserService(userStorage *storage.MockUserStorage, walletStorage *storage.MockWalletStorage) *UserServiceImpl {
	return NewUserService(userStorage, walletStorage, "test-secret", time.Hour)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("empty credentials", func(t *testing.T) {
		svc := newTestUserService(&storage.MockUserStorage{}, &storage.MockWalletStorage{})
		if _, _, err := svc.Register(ctx, "", "password"); !errors.Is(err, ErrEmptyCredentials) {
			t.Fatalf("expected ErrEmptyCredentials, got %v", err)
		}
		if _, _, err := svc.Register(ctx, "login", ""); !errors.Is(err, ErrEmptyCredentials) {
			t.Fatalf("expected ErrEmptyCredentials, got %v", err)
		}
	})

	t.Run("login exists", func(t *testing.T) {
		svc := newTestUserService(&storage.MockUserStorage{
			CreateFunc: func(ctx context.Context, user *models.User) error {
				return storage.ErrLoginExists
			},
		}, &storage.MockWalletStorage{})

		if _, _, err := svc.Register(ctx, "taken", "password"); !errors.Is(err, storage.ErrLoginExists) {
			t.Fatalf("expected ErrLoginExists, got %v", err)
		}
	})

	t.Run("successful registration provisions wallet", func(t *testing.T) {
		var createdUser *models.User
		walletCreated := false

		svc := newTestUserService(&storage.MockUserStorage{
			CreateFunc: func(ctx context.Context, user *models.User) error {
				createdUser = user
				return nil
			},
		}, &storage.MockWalletStorage{
			CreateFunc: func(ctx context.Context, userID uuid.UUID) error {
				walletCreated = true
				return nil
			},
		})

		user, token, err := svc.Register(ctx, "freelancer@example.com", "password123")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if token == "" {
			t.Error("Register() returned empty token")
		}
		if createdUser == nil {
			t.Fatal("user not created")
		}
		if createdUser.Role != models.RoleUser {
			t.Errorf("role = %s, want user", createdUser.Role)
		}
		if createdUser.PasswordHash == "password123" {
			t.Error("password stored in plaintext")
		}
		if !walletCreated {
			t.Error("wallet not provisioned at registration")
		}

		claims, err := auth.ValidateToken(token, "test-secret")
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("token UserID = %v, want %v", claims.UserID, user.ID)
		}
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	passwordHash, _ := auth.HashPassword("password123")
	user := &models.User{
		ID:           uuid.New(),
		Login:        "freelancer@example.com",
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	userStorage := &storage.MockUserStorage{
		GetByLoginFunc: func(ctx context.Context, login string) (*models.User, error) {
			if login == user.Login {
				return user, nil
			}
			return nil, storage.ErrUserNotFound
		},
	}

	t.Run("successful login carries role", func(t *testing.T) {
		svc := newTestUserService(userStorage, &storage.MockWalletStorage{})

		_, token, err := svc.Login(ctx, user.Login, "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		claims, err := auth.ValidateToken(token, "test-secret")
		if err != nil {
			t.Fatalf("ValidateToken() error = %v", err)
		}
		if claims.Role != models.RoleAdmin {
			t.Errorf("token role = %s, want admin", claims.Role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := newTestUserService(userStorage, &storage.MockWalletStorage{})
		if _, _, err := svc.Login(ctx, user.Login, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown login", func(t *testing.T) {
		svc := newTestUserService(userStorage, &storage.MockWalletStorage{})
		if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
