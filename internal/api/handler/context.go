package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/middleware"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// ctxSession returns the session restored by the Auth middleware. A missing
// or anonymous session means the middleware did not run; reject with 401
// before any service call.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil || !s.IsAuthenticated() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated session")
	}
	return s, nil
}

// bindAndValidate decodes the body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
