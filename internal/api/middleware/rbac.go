package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/multihub/multihub-api/internal/core/domain"
)

// RBAC restricts a route to an allow-list of roles. It must run after Auth:
// a request with no identity in context is rejected as unauthenticated, a
// request whose role is outside the allow-list as forbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if _, ok := allowed[domain.Role(role)]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}
