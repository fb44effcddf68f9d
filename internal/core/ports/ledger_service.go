package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// CreateClientInput carries the data needed to open a client record.
type CreateClientInput struct {
	UserID       string
	Password     string
	LastName     string
	FirstName    string
	Address      string
	Male         bool
	ClientNumber string
}

// CreateManagerInput carries the data needed to create a manager.
type CreateManagerInput struct {
	UserID    string
	Password  string
	LastName  string
	FirstName string
	Address   string
	Male      bool
}

// CreateAccountInput describes a new account. Number is generated when
// empty; OverdraftLimit selects the with_overdraft variant when non-nil.
type CreateAccountInput struct {
	OwnerID        string
	Number         string
	OverdraftLimit *decimal.Decimal
}

// LedgerService defines the account and user use cases.
type LedgerService interface {
	CreateClient(ctx context.Context, in CreateClientInput) (*domain.User, error)
	CreateManager(ctx context.Context, in CreateManagerInput) (*domain.User, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.Account, error)

	Credit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error)
	Debit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
	ChangeOverdraftLimit(ctx context.Context, number string, limit decimal.Decimal) (*domain.Account, error)
	ChangeClientNumber(ctx context.Context, userID, number string) (*domain.User, error)

	DeleteAccount(ctx context.Context, number string) error
	DeleteUser(ctx context.Context, userID string) error

	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ListAccountsOf(ctx context.Context, ownerID string) ([]*domain.Account, error)
	ListClients(ctx context.Context) ([]*domain.User, error)
	ListManagers(ctx context.Context) ([]*domain.User, error)
}
