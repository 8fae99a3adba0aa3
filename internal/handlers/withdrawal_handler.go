package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/services"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// WithdrawalHandler обрабатывает заявки пользователя на вывод средств.
type WithdrawalHandler struct {
	withdrawalService services.WithdrawalService
}

// NewWithdrawalHandler создаёт новый handler.
func NewWithdrawalHandler(withdrawalService services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

// Create обрабатывает POST /api/user/withdrawals.
func (h *WithdrawalHandler) Create(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	amount := decimal.NewFromFloat(req.Amount)

	withdrawal, err := h.withdrawalService.Create(c.Request().Context(), principal,
		req.BankAccountRef, amount, req.Currency, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid amount")
		case errors.Is(err, services.ErrInvalidBankAccount):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid bank account reference")
		case errors.Is(err, storage.ErrInsufficientBalance):
			return echo.NewHTTPError(http.StatusPaymentRequired, "insufficient balance")
		case errors.Is(err, storage.ErrWalletNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "wallet not found")
		default:
			c.Logger().Errorf("failed to create withdrawal: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusCreated, mapWithdrawalToResponse(withdrawal))
}

// Get обрабатывает GET /api/user/withdrawals/:id.
func (h *WithdrawalHandler) Get(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "withdrawal request not found")
	}

	withdrawal, err := h.withdrawalService.GetForUser(c.Request().Context(), principal, id)
	if err != nil {
		if errors.Is(err, storage.ErrWithdrawalNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "withdrawal request not found")
		}
		c.Logger().Errorf("failed to get withdrawal: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapWithdrawalToResponse(withdrawal))
}

// List обрабатывает GET /api/user/withdrawals.
func (h *WithdrawalHandler) List(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	withdrawals, err := h.withdrawalService.ListForUser(c.Request().Context(), principal)
	if err != nil {
		c.Logger().Errorf("failed to list withdrawals: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	if len(withdrawals) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, mapWithdrawalsToResponse(withdrawals))
}

// mapWithdrawalToResponse преобразует domain модель заявки в DTO.
func mapWithdrawalToResponse(w *models.Withdrawal) *models.WithdrawalResponse {
	amount, _ := w.Amount.Float64()
	resp := &models.WithdrawalResponse{
		ID:             w.ID,
		UserID:         w.UserID,
		BankAccountRef: w.BankAccountRef,
		Amount:         amount,
		Currency:       w.Currency,
		Status:         string(w.Status),
		Note:           w.Note,
		AdminNote:      w.AdminNote,
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
	}
	if w.ProcessedAt != nil {
		s := w.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	if w.CompletedAt != nil {
		s := w.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

func mapWithdrawalsToResponse(withdrawals []*models.Withdrawal) []*models.WithdrawalResponse {
	response := make([]*models.WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		response = append(response, mapWithdrawalToResponse(w))
	}
	return response
}
