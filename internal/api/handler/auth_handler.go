package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/middleware"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

type AuthHandler struct {
	auth        ports.AuthService
	credentials ports.CredentialService
	sessions    ports.SessionStore
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewAuthHandler(auth ports.AuthService, credentials ports.CredentialService, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		credentials: credentials,
		sessions:    sessions,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

type loginRequest struct {
	UserID   string `json:"user_id"  validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"`
}

type resetPasswordRequest struct {
	UserID       string `json:"user_id"       validate:"required"`
	LastName     string `json:"last_name"     validate:"required"`
	FirstName    string `json:"first_name"    validate:"required"`
	ClientNumber string `json:"client_number" validate:"required,client_number"`
	NewPassword  string `json:"new_password"`
}

type loginResponse struct {
	Token   string       `json:"token"`
	Outcome int          `json:"outcome"`
	User    userResponse `json:"user"`
}

// Login handles POST /auth/login. A fresh session id is bound to the user in
// the session store and returned inside a signed token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	session := domain.NewSession(uuid.NewString())
	switch outcome := h.auth.Login(ctx, session, req.UserID, req.Password); outcome {
	case ports.LoginFailed:
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case ports.ClientAuthenticated, ports.ManagerAuthenticated:
		if err := h.sessions.Save(ctx, session.ID(), req.UserID); err != nil {
			return err
		}
		token, err := middleware.IssueToken(h.jwtSecret, session.ID(), req.UserID, h.tokenTTL)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, loginResponse{
			Token:   token,
			Outcome: int(outcome),
			User:    toUserResponse(session.Identity()),
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "login unavailable")
	}
}

// Logout handles POST /auth/logout. The session id is revoked so the token
// can no longer be used.
func (h *AuthHandler) Logout(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Delete(c.Request().Context(), s.ID()); err != nil {
		return err
	}
	h.auth.Logout(s)
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(s.Identity()))
}

// ChangePassword handles PUT /auth/password for the caller's own account.
// Legacy hashes are upgraded by the credential service.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.credentials.ChangePassword(c.Request().Context(), s.Identity().UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword handles POST /auth/password/reset. It needs no session: the
// client proves its identity with name and client number.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.credentials.ResetPassword(c.Request().Context(), ports.ResetPasswordInput{
		UserID:       req.UserID,
		LastName:     req.LastName,
		FirstName:    req.FirstName,
		ClientNumber: req.ClientNumber,
		NewPassword:  req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
