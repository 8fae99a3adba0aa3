package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/flmarket/payouts/internal/auth"
	"github.com/flmarket/payouts/internal/models"
	"github.com/flmarket/payouts/internal/services"
	"github.com/flmarket/payouts/internal/storage"
	"github.com/labstack/echo/v4"
)

// UserHandler обрабатывает HTTP-запросы для работы с пользователями.
type UserHandler struct {
	userService   services.UserService
	ledgerService services.LedgerService
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(userService services.UserService, ledgerService services.LedgerService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ledgerService: ledgerService,
	}
}

// Register обрабатывает POST /api/user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Register(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, storage.ErrLoginExists) {
			return echo.NewHTTPError(http.StatusConflict, "login already exists")
		}
		c.Logger().Errorf("failed to register user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	setAuthToken(c, token)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": user.ID,
		"login":   user.Login,
	})
}

// Login обрабатывает POST /api/user/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
		}
		c.Logger().Errorf("failed to login user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	setAuthToken(c, token)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": user.ID,
		"login":   user.Login,
	})
}

// GetBalance обрабатывает GET /api/user/balance.
func (h *UserHandler) GetBalance(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	balance, err := h.ledgerService.GetBalance(c.Request().Context(), principal)
	if err != nil {
		if errors.Is(err, storage.ErrWalletNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "wallet not found")
		}
		c.Logger().Errorf("failed to get balance: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, balance)
}

// GetTransactions обрабатывает GET /api/user/transactions.
func (h *UserHandler) GetTransactions(c echo.Context) error {
	principal, err := auth.GetPrincipalFromContext(c)
	if err != nil {
		return err
	}

	transactions, err := h.ledgerService.GetTransactions(c.Request().Context(), principal)
	if err != nil {
		c.Logger().Errorf("failed to get transactions: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	if len(transactions) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	response := make([]*models.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		amount, _ := t.Amount.Float64()
		response = append(response, &models.TransactionResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Amount:      amount,
			Status:      string(t.Status),
			ReferenceID: t.ReferenceID,
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, response)
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func setAuthToken(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     "Authorization",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 часа
	}
	c.SetCookie(cookie)
	c.Response().Header().Set("Authorization", "Bearer "+token)
}
