package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/api/middleware"
	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/core/service"
)

type DashboardHandler struct {
	loader      *service.DashboardLoader
	authService ports.AuthService
	cookies     middleware.CookieConfig
}

func NewDashboardHandler(loader *service.DashboardLoader, authService ports.AuthService, cookies middleware.CookieConfig) *DashboardHandler {
	return &DashboardHandler{loader: loader, authService: authService, cookies: cookies}
}

// Dashboard returns the role-scoped dashboard. Sections that failed to load
// are listed in failed_sections and the rest still render.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Success      302
// @Failure      401  {object}  errorEnvelope
// @Router       /dashboard [get]
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	check, err := pageCheck(c)
	if err != nil {
		return err
	}

	dash, err := h.loader.Load(c.Request().Context(), check)
	if dash == nil {
		return err
	}
	if err != nil && h.rejected(c, check, err) {
		return err
	}

	return c.JSON(http.StatusOK, dash)
}

// Users lists the accounts. Requires users:view.
//
// @Summary      List users
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  usersResponse
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      502  {object}  errorEnvelope
// @Router       /dashboard/users [get]
func (h *DashboardHandler) Users(c echo.Context) error {
	check, err := pageCheck(c)
	if err != nil {
		return err
	}

	users, err := h.loader.Users(c.Request().Context(), check)
	if err != nil {
		h.rejected(c, check, err)
		return err
	}

	resp := usersResponse{Users: make([]usersItem, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, usersItem{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FullName:  u.FullName,
			Role:      u.RoleCode,
			RoleLabel: domain.DisplayName(u.RoleCode),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// rejected handles a 401 from a data call made after the page check passed:
// the session is dropped and the caller reports the error. A 403 keeps the
// session.
func (h *DashboardHandler) rejected(c echo.Context, check *service.PageCheck, err error) bool {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || !apiErr.Unauthorized() {
		return false
	}
	_ = h.authService.Logout(c.Request().Context(), check.SID())
	middleware.ClearSessionCookie(c, h.cookies)
	return true
}
