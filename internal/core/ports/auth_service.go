package ports

import (
	"context"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// LoginOutcome is the result of a login attempt.
type LoginOutcome int

const (
	LoginError LoginOutcome = iota - 2
	LoginFailed
	_
	ClientAuthenticated
	ManagerAuthenticated
)

func (o LoginOutcome) String() string {
	switch o {
	case ClientAuthenticated:
		return "client_authenticated"
	case ManagerAuthenticated:
		return "manager_authenticated"
	case LoginFailed:
		return "login_failed"
	default:
		return "error"
	}
}

// Authenticated reports whether the outcome set an identity.
func (o LoginOutcome) Authenticated() bool {
	return o == ClientAuthenticated || o == ManagerAuthenticated
}

// AuthService binds identities to sessions.
type AuthService interface {
	Login(ctx context.Context, session *domain.Session, userID, password string) LoginOutcome
	Logout(session *domain.Session)
	// Restore re-attaches a known user to a fresh session, e.g. after the
	// session id was read back from the session store.
	Restore(ctx context.Context, session *domain.Session, userID string) error
}

// ResetPasswordInput proves a client's identity for a password reset.
type ResetPasswordInput struct {
	UserID       string
	LastName     string
	FirstName    string
	ClientNumber string
	NewPassword  string
}

// CredentialService hashes, verifies and changes passwords.
type CredentialService interface {
	Hash(password string) (string, error)
	Verify(raw, stored string) bool
	ChangePassword(ctx context.Context, userID, current, next string) error
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
}
