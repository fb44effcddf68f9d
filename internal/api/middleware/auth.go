package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

const sessionKey = "session"

// Auth validates the bearer token, checks the session is still live and
// puts the restored *domain.Session into the echo context.
func Auth(jwtSecret string, sessions ports.SessionStore, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			sessionID, subject, err := parseToken(jwtSecret, parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			userID, err := sessions.Load(ctx, sessionID)
			if errors.Is(err, domain.ErrNotAuthenticated) || (err == nil && userID != subject) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			if err != nil {
				return err
			}

			session := domain.NewSession(sessionID)
			if err := auth.Restore(ctx, session, userID); err != nil {
				if errors.Is(err, domain.ErrNotAuthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
				}
				return err
			}

			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// SessionFrom returns the session set by Auth, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionKey).(*domain.Session)
	return s
}

// WithSession stores s the way Auth does. Handler tests use it to skip Auth.
func WithSession(c echo.Context, s *domain.Session) {
	c.Set(sessionKey, s)
}
