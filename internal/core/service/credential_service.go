package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/pkg/metrics"
)

// CredentialService hashes new passwords with the modern scheme and
// verifies stored hashes against an ordered list of schemes, modern first.
type CredentialService struct {
	store   ports.LedgerStore
	modern  ports.HashScheme
	schemes []ports.HashScheme
	logger  zerolog.Logger
}

// NewCredentialService returns a CredentialService. Hashes are only ever
// produced by modern; the legacy schemes are kept for verification.
func NewCredentialService(store ports.LedgerStore, modern ports.HashScheme, legacy []ports.HashScheme, logger zerolog.Logger) *CredentialService {
	schemes := make([]ports.HashScheme, 0, len(legacy)+1)
	schemes = append(schemes, modern)
	schemes = append(schemes, legacy...)
	return &CredentialService{store: store, modern: modern, schemes: schemes, logger: logger}
}

func (s *CredentialService) Hash(password string) (string, error) {
	return s.modern.Hash(password)
}

// Verify reports whether raw matches stored under any known scheme. It
// never fails: scheme errors are logged and count as a mismatch.
func (s *CredentialService) Verify(raw, stored string) bool {
	_, ok := s.verify(raw, stored)
	return ok
}

func (s *CredentialService) verify(raw, stored string) (ports.HashScheme, bool) {
	for _, scheme := range s.schemes {
		if s.matches(scheme, raw, stored) {
			metrics.PasswordVerificationsTotal.WithLabelValues(scheme.Name()).Inc()
			return scheme, true
		}
	}
	return nil, false
}

// matches treats a panic anywhere in the scheme as a mismatch.
func (s *CredentialService) matches(scheme ports.HashScheme, raw, stored string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("scheme", scheme.Name()).Interface("panic", r).Msg("password scheme panicked")
			ok = false
		}
	}()

	if !scheme.Recognizes(stored) {
		return false
	}
	ok, err := scheme.Matches(raw, stored)
	if err != nil {
		s.logger.Warn().Err(err).Str("scheme", scheme.Name()).Msg("password verification error")
		return false
	}
	return ok
}

// ChangePassword replaces the stored hash once current verifies. Accounts
// still on a legacy scheme are upgraded to the modern one here.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, current, next string) error {
	var upgraded string
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		user, err := tx.Users().Find(ctx, userID)
		if err != nil {
			return err
		}
		scheme, ok := s.verify(current, user.PasswordHash)
		if !ok {
			return domain.ErrWrongPassword
		}
		if strings.TrimSpace(next) == "" {
			return domain.ErrBlankPassword
		}
		hash, err := s.Hash(next)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPassword, err)
		}
		user.PasswordHash = hash
		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		if scheme.Name() != s.modern.Name() {
			upgraded = scheme.Name()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("change password of %s: %w", userID, err)
	}

	if upgraded != "" {
		metrics.PasswordMigrationsTotal.Inc()
		s.logger.Info().Str("user_id", userID).Str("from", upgraded).Str("to", s.modern.Name()).Msg("password hash migrated")
	}
	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// ResetPassword sets a new password for a client who proves their identity
// with user id, names and client number.
func (s *CredentialService) ResetPassword(ctx context.Context, in ports.ResetPasswordInput) error {
	if strings.TrimSpace(in.NewPassword) == "" {
		return fmt.Errorf("reset password of %s: %w", in.UserID, domain.ErrBlankPassword)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		user, err := tx.Users().Find(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !user.IsClient() ||
			!strings.EqualFold(user.LastName, in.LastName) ||
			!strings.EqualFold(user.FirstName, in.FirstName) ||
			user.Client.Number != in.ClientNumber {
			return domain.ErrIdentityMismatch
		}
		hash, err := s.Hash(in.NewPassword)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPassword, err)
		}
		user.PasswordHash = hash
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return fmt.Errorf("reset password of %s: %w", in.UserID, err)
	}

	s.logger.Info().Str("user_id", in.UserID).Msg("password reset")
	return nil
}
