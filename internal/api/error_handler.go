package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by kind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "kind": "<kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		resp := errorResponse{Error: de.Error(), Kind: string(de.Kind)}
		switch {
		case errors.Is(err, domain.ErrNotAuthenticated):
			return http.StatusUnauthorized, resp
		case errors.Is(err, domain.ErrForbidden),
			errors.Is(err, domain.ErrWrongPassword),
			errors.Is(err, domain.ErrIdentityMismatch):
			return http.StatusForbidden, resp
		case errors.Is(err, domain.ErrDuplicateAccount),
			errors.Is(err, domain.ErrDuplicateUser),
			errors.Is(err, domain.ErrDuplicateClientNumber):
			return http.StatusConflict, resp
		}

		switch de.Kind {
		case domain.KindIllegalFormat:
			return http.StatusBadRequest, resp
		case domain.KindIllegalOperation:
			return http.StatusConflict, resp
		case domain.KindInsufficientFunds:
			return http.StatusUnprocessableEntity, resp
		case domain.KindNotFound:
			return http.StatusNotFound, resp
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: string(domain.KindTechnical)}
}
