package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// RequirePermission enforces the role permission table. It must run after
// SessionGuard; every listed permission is required.
func RequirePermission(perms ...domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			check, ok := Check(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			}

			profile := check.Profile()
			for _, p := range perms {
				if !profile.Can(p) {
					return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
				}
			}
			return next(c)
		}
	}
}
