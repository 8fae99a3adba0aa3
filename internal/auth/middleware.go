package auth

import (
	"net/http"
	"strings"

	"github.com/flmarket/payouts/internal/models"
	"github.com/labstack/echo/v4"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	// PrincipalKey - ключ для хранения принципала в контексте.
	PrincipalKey ContextKey = "principal"
)

// JWTMiddleware создаёт middleware для проверки JWT токена.
// После проверки в контекст кладётся models.Principal - единственное,
// что сервисы знают об аутентификации.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractTokenFromHeader(c)

			if token == "" {
				token = extractTokenFromCookie(c)
			}

			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(string(PrincipalKey), models.Principal{
				UserID:  claims.UserID,
				Login:   claims.Login,
				IsAdmin: claims.Role == models.RoleAdmin,
			})

			return next(c)
		}
	}
}

// AdminOnly пропускает только администраторов. Ответ не раскрывает,
// существует ли запрошенный ресурс.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := GetPrincipalFromContext(c)
			if err != nil {
				return err
			}
			if !principal.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// extractTokenFromHeader извлекает токен из заголовка Authorization.
func extractTokenFromHeader(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Проверка формата "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}

	return ""
}

// extractTokenFromCookie извлекает токен из cookie.
func extractTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie("Authorization")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetPrincipalFromContext извлекает принципала из контекста.
func GetPrincipalFromContext(c echo.Context) (models.Principal, error) {
	principal, ok := c.Get(string(PrincipalKey)).(models.Principal)
	if !ok {
		return models.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "principal not found in context")
	}
	return principal, nil
}
