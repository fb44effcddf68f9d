package ports

import (
	"context"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// AccountRepository persists accounts. Inside a transaction, Find and
// FindAllOwnedBy lock what they return until commit or rollback; Get and
// ListOwnedBy only read.
type AccountRepository interface {
	Exists(ctx context.Context, number string) (bool, error)
	// Find returns domain.ErrAccountNotFound when the account is missing.
	Find(ctx context.Context, number string) (*domain.Account, error)
	FindAllOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error)
	Get(ctx context.Context, number string) (*domain.Account, error)
	ListOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error)
	Save(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, number string) error
}

// UserRepository persists clients and managers.
type UserRepository interface {
	Exists(ctx context.Context, userID string) (bool, error)
	// Find locks the user and returns domain.ErrUserNotFound when it is
	// missing. Anything that depends on the user still existing at commit,
	// such as opening an account for it, must go through Find.
	Find(ctx context.Context, userID string) (*domain.User, error)
	// Get is Find without the lock.
	Get(ctx context.Context, userID string) (*domain.User, error)
	FindByClientNumber(ctx context.Context, number string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	// CountManagers reads the manager set under lock so that a concurrent
	// delete of another manager waits for this transaction.
	CountManagers(ctx context.Context) (int, error)
	Save(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, userID string) error
}

// LedgerTx exposes the repositories bound to one transaction.
type LedgerTx interface {
	Accounts() AccountRepository
	Users() UserRepository
}

// LedgerStore runs fn as a single unit of work: the transaction commits
// when fn returns nil and rolls back otherwise. fn may be invoked again
// when the store retries a transient conflict, so it must not have side
// effects outside tx.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
