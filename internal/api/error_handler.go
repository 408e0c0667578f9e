package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Relays the remote API's rejection message verbatim.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		if ae.Status >= 400 && ae.Status < 500 {
			return ae.Status, errorResponse{Error: ae.Error()}
		}
		return http.StatusBadGateway, errorResponse{Error: ae.Error()}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Unauthorized():
			return http.StatusUnauthorized, errorResponse{Error: "session expired, please log in again"}
		case apiErr.Forbidden():
			return http.StatusForbidden, errorResponse{Error: "access forbidden"}
		}
	}

	switch {
	case errors.Is(err, domain.ErrConnection):
		return http.StatusBadGateway, errorResponse{Error: "could not reach server, check your connection"}
	case errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, errorResponse{Error: "unexpected server response"}
	case errors.Is(err, domain.ErrSessionInvalid), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	}

	if apiErr != nil {
		log.Warn().Err(err).Str("path", c.Path()).Msg("remote api error")
		return http.StatusBadGateway, errorResponse{Error: "remote api error"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
