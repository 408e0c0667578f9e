package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/controlsys/defect-web/docs"
	"github.com/controlsys/defect-web/internal/api/handler"
	"github.com/controlsys/defect-web/internal/api/middleware"
	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/internal/core/service"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth    ports.AuthService
	Guard   *service.Guard
	Loader  *service.DashboardLoader
	Forms   *service.FormValidator
	Cookies middleware.CookieConfig
	// Health is pinged by the readiness probe, keyed by dependency name.
	Health map[string]ports.HealthChecker
	// Registerer enables request metrics and /metrics when set.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	if d.Forms != nil {
		e.Validator = d.Forms
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "defectweb",
			Registerer: d.Registerer,
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Entry and auth routes ---
	entryHandler := handler.NewEntryHandler(d.Cookies.Secure)
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)

	e.GET("/", entryHandler.Entry)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Protected views ---
	dashboardHandler := handler.NewDashboardHandler(d.Loader, d.Auth, d.Cookies)

	dash := e.Group("/dashboard", middleware.SessionGuard(d.Guard, d.Cookies))
	dash.GET("", dashboardHandler.Dashboard)
	dash.GET("/users", dashboardHandler.Users, middleware.RequirePermission(domain.PermUsersView))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
