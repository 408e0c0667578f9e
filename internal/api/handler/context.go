package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/controlsys/defect-web/internal/api/middleware"
	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/service"
)

// pageCheck returns the check SessionGuard stored for this request and
// fails fast when the route was mounted without the guard.
func pageCheck(c echo.Context) (*service.PageCheck, error) {
	check, ok := middleware.Check(c)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return check, nil
}
