package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/services"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type mockWithdrawalService struct {
	CreateFunc      func(ctx context.Context, principal models.Principal, bankAccountRef string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error)
	ApproveFunc     func(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	RejectFunc      func(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	CompleteFunc    func(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)
	GetForUserFunc  func(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Withdrawal, error)
	ListForUserFunc func(ctx context.Context, principal models.Principal) ([]*models.Withdrawal, error)
	ListAllFunc     func(ctx context.Context, principal models.Principal, status models.WithdrawalStatus) ([]*models.Withdrawal, error)
}

func (m *mockWithdrawalService) Create(ctx context.Context, principal models.Principal, bankAccountRef string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, principal, bankAccountRef, amount, currency, note)
	}
	return nil, nil
}

func (m *mockWithdrawalService) Approve(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, principal, id, adminNote)
	}
	return nil, nil
}

func (m *mockWithdrawalService) Reject(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	if m.RejectFunc != nil {
		return m.RejectFunc(ctx, principal, id, adminNote)
	}
	return nil, nil
}

func (m *mockWithdrawalService) Complete(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, principal, id, adminNote)
	}
	return nil, nil
}

func (m *mockWithdrawalService) GetForUser(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Withdrawal, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, principal, id)
	}
	return nil, storage.ErrWithdrawalNotFound
}

func (m *mockWithdrawalService) ListForUser(ctx context.Context, principal models.Principal) ([]*models.Withdrawal, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, principal)
	}
	return []*models.Withdrawal{}, nil
}

func (m *mockWithdrawalService) ListAll(ctx context.Context, principal models.Principal, status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, principal, status)
	}
	return []*models.Withdrawal{}, nil
}

func newContextWithPrincipal(e *echo.Echo, method, target, body string, principal models.Principal) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(auth.PrincipalKey), principal)
	return c, rec
}

func TestWithdrawalHandler_Create(t *testing.T) {
	userID := uuid.New()
	principal := models.Principal{UserID: userID}

	sample := &models.Withdrawal{
		ID:             uuid.New(),
		UserID:         userID,
		BankAccountRef: "acc-1",
		Amount:         decimal.NewFromInt(200),
		Currency:       "USD",
		Status:         models.WithdrawalStatusPending,
	}

	tests := []struct {
		name           string
		body           string
		mockService    *mockWithdrawalService
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"bank_account_ref":"acc-1","amount":200,"currency":"USD"}`,
			mockService: &mockWithdrawalService{
				CreateFunc: func(ctx context.Context, p models.Principal, ref string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
					return sample, nil
				},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid amount",
			body: `{"bank_account_ref":"acc-1","amount":0}`,
			mockService: &mockWithdrawalService{
				CreateFunc: func(ctx context.Context, p models.Principal, ref string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
					return nil, services.ErrInvalidAmount
				},
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "invalid bank account",
			body: `{"amount":200}`,
			mockService: &mockWithdrawalService{
				CreateFunc: func(ctx context.Context, p models.Principal, ref string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
					return nil, services.ErrInvalidBankAccount
				},
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "insufficient balance",
			body: `{"bank_account_ref":"acc-1","amount":100000}`,
			mockService: &mockWithdrawalService{
				CreateFunc: func(ctx context.Context, p models.Principal, ref string, amount decimal.Decimal, currency, note string) (*models.Withdrawal, error) {
					return nil, storage.ErrInsufficientBalance
				},
			},
			expectedStatus: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := newContextWithPrincipal(e, http.MethodPost, "/api/user/withdrawals", tt.body, principal)

			h := NewWithdrawalHandler(tt.mockService)
			err := h.Create(c)

			status := rec.Code
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			if status != tt.expectedStatus {
				t.Errorf("status = %d, want %d", status, tt.expectedStatus)
			}
		})
	}
}

func TestWithdrawalHandler_List(t *testing.T) {
	userID := uuid.New()
	principal := models.Principal{UserID: userID}

	t.Run("empty list returns 204", func(t *testing.T) {
		e := echo.New()
		c, rec := newContextWithPrincipal(e, http.MethodGet, "/api/user/withdrawals", "", principal)

		h := NewWithdrawalHandler(&mockWithdrawalService{})
		if err := h.List(c); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("list returns own withdrawals", func(t *testing.T) {
		e := echo.New()
		c, rec := newContextWithPrincipal(e, http.MethodGet, "/api/user/withdrawals", "", principal)

		h := NewWithdrawalHandler(&mockWithdrawalService{
			ListForUserFunc: func(ctx context.Context, p models.Principal) ([]*models.Withdrawal, error) {
				if p.UserID != userID {
					t.Errorf("list filtered by %v, want %v", p.UserID, userID)
				}
				return []*models.Withdrawal{
					{ID: uuid.New(), UserID: userID, Amount: decimal.NewFromInt(100), Status: models.WithdrawalStatusPending},
				}, nil
			},
		})
		if err := h.List(c); err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "PENDING") {
			t.Errorf("body does not contain status: %s", rec.Body.String())
		}
	})
}
