package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/api/middleware"
	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
)

// DashboardPath is where a successful login lands.
const DashboardPath = "/dashboard"

type AuthHandler struct {
	authService ports.AuthService
	cookies     middleware.CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookies middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type loginResponse struct {
	Redirect string             `json:"redirect"`
	User     domain.UserProfile `json:"user"`
}

type registerResponse struct {
	Detail string              `json:"detail"`
	User   *domain.UserProfile `json:"user,omitempty"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

// Register submits the registration form. It never logs the user in: the
// account must be confirmed by e-mail first.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RegistrationRequest  true  "Registration form"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Failure      502   {object}  errorEnvelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req domain.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Detail: res.Detail, User: res.User})
}

// Login exchanges credentials for a session and issues a fresh sid cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Failure      502   {object}  errorEnvelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	sid := uuid.NewString()
	res, err := h.authService.Login(ctx, sid, req)
	if err != nil {
		return err
	}

	// Drop the browser's previous slot.
	if old := middleware.SessionID(c); old != "" && old != sid {
		_ = h.authService.Logout(ctx, old)
	}
	middleware.SetSessionCookie(c, h.cookies, sid)

	return c.JSON(http.StatusOK, loginResponse{Redirect: DashboardPath, User: res.User})
}

// Logout forgets the session and expires the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Failure      500  {object}  errorEnvelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, h.cookies)
	return c.JSON(http.StatusOK, redirectResponse{Redirect: "/"})
}
