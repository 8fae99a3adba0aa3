package storage

import (
	"context"

	"github.com/flmarket/payouts/internal/models"
	"github.com/google/uuid"
)

// MockUserStorage - мок для тестов.
type MockUserStorage struct {
	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByLoginFunc func(ctx context.Context, login string) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *MockUserStorage) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}
