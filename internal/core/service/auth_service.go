package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/pkg/metrics"
)

// PasswordVerifier checks a raw password against a stored hash.
type PasswordVerifier interface {
	Verify(raw, stored string) bool
}

// AuthService implements login and logout on explicit sessions.
type AuthService struct {
	store    ports.LedgerStore
	verifier PasswordVerifier
	logger   zerolog.Logger
}

func NewAuthService(store ports.LedgerStore, verifier PasswordVerifier, logger zerolog.Logger) *AuthService {
	return &AuthService{store: store, verifier: verifier, logger: logger}
}

// Login authenticates userID on session. Unknown users and wrong passwords
// both yield LoginFailed; the session keeps its previous identity unless
// the login succeeds.
func (s *AuthService) Login(ctx context.Context, session *domain.Session, userID, password string) ports.LoginOutcome {
	outcome := s.login(ctx, session, userID, password)
	metrics.LoginAttemptsTotal.WithLabelValues(outcome.String()).Inc()
	return outcome
}

func (s *AuthService) login(ctx context.Context, session *domain.Session, userID, password string) ports.LoginOutcome {
	if session == nil || strings.TrimSpace(userID) == "" || password == "" {
		return ports.LoginError
	}

	user, err := s.loadUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.logger.Info().Str("user_id", userID).Msg("login failed: unknown user")
		return ports.LoginFailed
	case err != nil:
		s.logger.Error().Err(err).Str("user_id", userID).Msg("login lookup failed")
		return ports.LoginError
	}

	if !s.verifier.Verify(password, user.PasswordHash) {
		s.logger.Info().Str("user_id", userID).Msg("login failed: wrong password")
		return ports.LoginFailed
	}

	session.Authenticate(user)
	s.logger.Info().Str("user_id", userID).Str("role", string(user.Role)).Msg("login succeeded")
	if user.IsManager() {
		return ports.ManagerAuthenticated
	}
	return ports.ClientAuthenticated
}

// Logout clears the active identity.
func (s *AuthService) Logout(session *domain.Session) {
	if session == nil {
		return
	}
	if u := session.Identity(); u != nil {
		s.logger.Info().Str("user_id", u.UserID).Msg("logout")
	}
	session.Clear()
}

// Restore binds a user already authenticated in an earlier request.
func (s *AuthService) Restore(ctx context.Context, session *domain.Session, userID string) error {
	user, err := s.loadUser(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("restore %s: %w", userID, domain.ErrNotAuthenticated)
	}
	if err != nil {
		return fmt.Errorf("restore %s: %w", userID, err)
	}
	session.Authenticate(user)
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	var user *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		u, err := readUser(ctx, tx, userID)
		user = u
		return err
	})
	return user, err
}
