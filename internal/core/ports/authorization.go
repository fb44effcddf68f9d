package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// AuthorizedLedger exposes the LedgerService use cases on behalf of the
// identity held by a session. Calls the identity may not make fail with
// domain.ErrForbidden; calls without an identity fail with
// domain.ErrNotAuthenticated.
type AuthorizedLedger interface {
	CreateClient(ctx context.Context, s *domain.Session, in CreateClientInput) (*domain.User, error)
	CreateManager(ctx context.Context, s *domain.Session, in CreateManagerInput) (*domain.User, error)
	CreateAccount(ctx context.Context, s *domain.Session, in CreateAccountInput) (*domain.Account, error)
	ChangeOverdraftLimit(ctx context.Context, s *domain.Session, number string, limit decimal.Decimal) (*domain.Account, error)
	ChangeClientNumber(ctx context.Context, s *domain.Session, userID, number string) (*domain.User, error)
	DeleteAccount(ctx context.Context, s *domain.Session, number string) error
	DeleteUser(ctx context.Context, s *domain.Session, userID string) error
	ListClients(ctx context.Context, s *domain.Session) ([]*domain.User, error)
	ListManagers(ctx context.Context, s *domain.Session) ([]*domain.User, error)

	GetUser(ctx context.Context, s *domain.Session, userID string) (*domain.User, error)
	GetAccount(ctx context.Context, s *domain.Session, number string) (*domain.Account, error)
	ListAccountsOf(ctx context.Context, s *domain.Session, ownerID string) ([]*domain.Account, error)
	Credit(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error)
	Debit(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error)
	Transfer(ctx context.Context, s *domain.Session, from, to string, amount decimal.Decimal) error
}
