package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/core/service"
)

const (
	// SessionCookie carries the opaque slot id; the token never leaves the
	// server.
	SessionCookie = "sid"

	checkKey = "page_check"
)

// CookieConfig controls how the sid cookie is written.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// SessionID returns the sid cookie value, or "" when absent.
func SessionID(c echo.Context) string {
	ck, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}

// SetSessionCookie issues the sid cookie.
func SetSessionCookie(c echo.Context, cfg CookieConfig, sid string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the sid cookie.
func ClearSessionCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionGuard runs one PageCheck per request. Unauthenticated requests are
// redirected to the entry view with the sid cookie expired; authenticated
// ones reach next with the check stored in the context.
func SessionGuard(guard *service.Guard, cfg CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var redirectErr error
			check := guard.NewCheck(SessionID(c), func(path string) {
				ClearSessionCookie(c, cfg)
				redirectErr = c.Redirect(http.StatusFound, path)
			})

			if check.Run(c.Request().Context()) != service.StateAuthenticated {
				return redirectErr
			}

			c.Set(checkKey, check)
			return next(c)
		}
	}
}

// Check returns the authenticated PageCheck stored by SessionGuard.
func Check(c echo.Context) (*service.PageCheck, bool) {
	check, ok := c.Get(checkKey).(*service.PageCheck)
	if !ok || check.State() != service.StateAuthenticated {
		return nil, false
	}
	return check, true
}
