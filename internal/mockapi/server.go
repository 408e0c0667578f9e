// Package mockapi is a development stand-in for the remote defect-tracking
// API: accounts with e-mail confirmation, bearer tokens, and a small seeded
// data set behind them.
package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/pkg/logger"
)

// Config holds the mock API settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// FrontendURL receives the redirect after e-mail confirmation.
	FrontendURL string
	// PublicURL is this server's address as used in confirmation links.
	PublicURL string
}

type Server struct {
	cfg      Config
	accounts ports.AccountRepository
	mailer   Mailer
	data     *dataset
	log      zerolog.Logger
	now      func() time.Time
}

// New builds the server. A nil mailer logs confirmation links inline.
func New(cfg Config, accounts ports.AccountRepository, mailer Mailer, log zerolog.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	log = logger.Component(log, "mockapi")
	if mailer == nil {
		mailer = directMailer{sender: LogSender{Log: log}}
	}
	return &Server{
		cfg:      cfg,
		accounts: accounts,
		mailer:   mailer,
		data:     seedData(),
		log:      log,
		now:      time.Now,
	}
}

// detailResponse is the error body shape of the remote API.
type detailResponse struct {
	Detail string `json:"detail"`
}

// Router builds the Echo instance with all routes registered.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", s.health)
	e.GET("/verify", s.verify)
	e.POST("/auth/register", s.register)
	e.POST("/auth/login", s.login)

	auth := bearerAuth(s.cfg.JWTSecret, s.accounts)
	e.GET("/users/me", s.me, auth)

	api := e.Group("/api", auth)
	api.GET("/projects", s.projects)
	api.GET("/defects", s.defects)
	api.GET("/reports/defects-statistics", s.statistics)
	api.GET("/users", s.users, requireRole("manager", "admin"))

	return e
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Service is running",
	})
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, detailResponse{Detail: fmt.Sprintf("%v", he.Message)})
		return
	}

	s.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	_ = c.JSON(http.StatusInternalServerError, detailResponse{Detail: "internal server error"})
}
