package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/services"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AdminHandler обрабатывает действия администратора над заявками
// и кошельками.
type AdminHandler struct {
	withdrawalService services.WithdrawalService
	ledgerService     services.LedgerService
}

// NewAdminHandler создаёт новый handler.
func NewAdminHandler(withdrawalService services.WithdrawalService, ledgerService services.LedgerService) *AdminHandler {
	return &AdminHandler{
		withdrawalService: withdrawalService,
		ledgerService:     ledgerService,
	}
}

// ListWithdrawals обрабатывает GET /api/admin/withdrawals.
// Поддерживает фильтр ?status=PENDING.
func (h *AdminHandler) ListWithdrawals(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	status := models.WithdrawalStatus(c.QueryParam("status"))

	withdrawals, err := h.withdrawalService.ListAll(c.Request().Context(), principal, status)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		c.Logger().Errorf("failed to list withdrawals: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, mapWithdrawalsToResponse(withdrawals))
}

// Approve обрабатывает POST /api/admin/withdrawals/:id/approve.
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.action(c, h.withdrawalService.Approve)
}

// Reject обрабатывает POST /api/admin/withdrawals/:id/reject.
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.action(c, h.withdrawalService.Reject)
}

// Complete обрабатывает POST /api/admin/withdrawals/:id/complete.
func (h *AdminHandler) Complete(c echo.Context) error {
	return h.action(c, h.withdrawalService.Complete)
}

// CreditWallet обрабатывает POST /api/admin/wallets/:user_id/credit.
func (h *AdminHandler) CreditWallet(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	err = h.ledgerService.Credit(c.Request().Context(), principal, userID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		case errors.Is(err, services.ErrInvalidCreditAmount):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid amount")
		case errors.Is(err, storage.ErrWalletNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "wallet not found")
		default:
			c.Logger().Errorf("failed to credit wallet: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.NoContent(http.StatusOK)
}

type withdrawalAction func(ctx context.Context, principal models.Principal, id uuid.UUID, adminNote string) (*models.Withdrawal, error)

// action - общий обработчик approve/reject/complete.
func (h *AdminHandler) action(c echo.Context, fn withdrawalAction) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "withdrawal request not found")
	}

	var req models.AdminActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	withdrawal, err := fn(c.Request().Context(), principal, id, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		case errors.Is(err, storage.ErrWithdrawalNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "withdrawal request not found")
		case errors.Is(err, services.ErrInvalidStateTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, storage.ErrInvariantViolation):
			c.Logger().Errorf("ledger invariant violation: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		default:
			c.Logger().Errorf("failed to process withdrawal action: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, mapWithdrawalToResponse(withdrawal))
}
