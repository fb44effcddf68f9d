package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// AuthorizationGate fronts a LedgerService. Administrative operations need
// a manager; account operations need a manager or the owner of every
// account involved.
type AuthorizationGate struct {
	ledger ports.LedgerService
	logger zerolog.Logger
}

func NewAuthorizationGate(ledger ports.LedgerService, logger zerolog.Logger) *AuthorizationGate {
	return &AuthorizationGate{ledger: ledger, logger: logger}
}

// ── Manager-only operations ──────────────────────────────────────────────────

func (g *AuthorizationGate) CreateClient(ctx context.Context, s *domain.Session, in ports.CreateClientInput) (*domain.User, error) {
	if err := g.requireManager(s, "create_client"); err != nil {
		return nil, err
	}
	return g.ledger.CreateClient(ctx, in)
}

func (g *AuthorizationGate) CreateManager(ctx context.Context, s *domain.Session, in ports.CreateManagerInput) (*domain.User, error) {
	if err := g.requireManager(s, "create_manager"); err != nil {
		return nil, err
	}
	return g.ledger.CreateManager(ctx, in)
}

func (g *AuthorizationGate) CreateAccount(ctx context.Context, s *domain.Session, in ports.CreateAccountInput) (*domain.Account, error) {
	if err := g.requireManager(s, "create_account"); err != nil {
		return nil, err
	}
	return g.ledger.CreateAccount(ctx, in)
}

func (g *AuthorizationGate) ChangeOverdraftLimit(ctx context.Context, s *domain.Session, number string, limit decimal.Decimal) (*domain.Account, error) {
	if err := g.requireManager(s, "change_overdraft_limit"); err != nil {
		return nil, err
	}
	return g.ledger.ChangeOverdraftLimit(ctx, number, limit)
}

func (g *AuthorizationGate) ChangeClientNumber(ctx context.Context, s *domain.Session, userID, number string) (*domain.User, error) {
	if err := g.requireManager(s, "change_client_number"); err != nil {
		return nil, err
	}
	return g.ledger.ChangeClientNumber(ctx, userID, number)
}

func (g *AuthorizationGate) DeleteAccount(ctx context.Context, s *domain.Session, number string) error {
	if err := g.requireManager(s, "delete_account"); err != nil {
		return err
	}
	return g.ledger.DeleteAccount(ctx, number)
}

func (g *AuthorizationGate) DeleteUser(ctx context.Context, s *domain.Session, userID string) error {
	if err := g.requireManager(s, "delete_user"); err != nil {
		return err
	}
	return g.ledger.DeleteUser(ctx, userID)
}

func (g *AuthorizationGate) ListClients(ctx context.Context, s *domain.Session) ([]*domain.User, error) {
	if err := g.requireManager(s, "list_clients"); err != nil {
		return nil, err
	}
	return g.ledger.ListClients(ctx)
}

func (g *AuthorizationGate) ListManagers(ctx context.Context, s *domain.Session) ([]*domain.User, error) {
	if err := g.requireManager(s, "list_managers"); err != nil {
		return nil, err
	}
	return g.ledger.ListManagers(ctx)
}

// ── Owner-or-manager operations ──────────────────────────────────────────────

// GetUser lets a client read only their own record.
func (g *AuthorizationGate) GetUser(ctx context.Context, s *domain.Session, userID string) (*domain.User, error) {
	if err := g.requireSelf(s, "get_user", userID); err != nil {
		return nil, err
	}
	return g.ledger.GetUser(ctx, userID)
}

func (g *AuthorizationGate) ListAccountsOf(ctx context.Context, s *domain.Session, ownerID string) ([]*domain.Account, error) {
	if err := g.requireSelf(s, "list_accounts", ownerID); err != nil {
		return nil, err
	}
	return g.ledger.ListAccountsOf(ctx, ownerID)
}

func (g *AuthorizationGate) GetAccount(ctx context.Context, s *domain.Session, number string) (*domain.Account, error) {
	if err := g.requireOwnership(ctx, s, "get_account", number); err != nil {
		return nil, err
	}
	return g.ledger.GetAccount(ctx, number)
}

func (g *AuthorizationGate) Credit(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error) {
	if err := g.requireOwnership(ctx, s, "credit", number); err != nil {
		return nil, err
	}
	return g.ledger.Credit(ctx, number, amount)
}

func (g *AuthorizationGate) Debit(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error) {
	if err := g.requireOwnership(ctx, s, "debit", number); err != nil {
		return nil, err
	}
	return g.ledger.Debit(ctx, number, amount)
}

// Transfer requires a client to own both accounts.
func (g *AuthorizationGate) Transfer(ctx context.Context, s *domain.Session, from, to string, amount decimal.Decimal) error {
	if err := g.requireOwnership(ctx, s, "transfer", from, to); err != nil {
		return err
	}
	return g.ledger.Transfer(ctx, from, to, amount)
}

// ── Checks ───────────────────────────────────────────────────────────────────

func (g *AuthorizationGate) identity(s *domain.Session, op string) (*domain.User, error) {
	if s == nil || !s.IsAuthenticated() {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotAuthenticated)
	}
	return s.Identity(), nil
}

func (g *AuthorizationGate) requireManager(s *domain.Session, op string) error {
	u, err := g.identity(s, op)
	if err != nil {
		return err
	}
	if !u.IsManager() {
		return g.deny(u, op, "manager role required")
	}
	return nil
}

func (g *AuthorizationGate) requireSelf(s *domain.Session, op, userID string) error {
	u, err := g.identity(s, op)
	if err != nil {
		return err
	}
	if u.IsManager() || u.UserID == userID {
		return nil
	}
	return g.deny(u, op, "not the requested user")
}

// requireOwnership reads the stored owner of each account. A client asking
// for an account that does not exist is denied rather than told it is missing.
func (g *AuthorizationGate) requireOwnership(ctx context.Context, s *domain.Session, op string, numbers ...string) error {
	u, err := g.identity(s, op)
	if err != nil {
		return err
	}
	if u.IsManager() {
		return nil
	}
	for _, n := range numbers {
		a, err := g.ledger.GetAccount(ctx, n)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return g.deny(u, op, "account "+n+" not owned")
		}
		if err != nil {
			return err
		}
		if a.OwnerID != u.UserID {
			return g.deny(u, op, "account "+n+" not owned")
		}
	}
	return nil
}

func (g *AuthorizationGate) deny(u *domain.User, op, reason string) error {
	g.logger.Warn().Str("user_id", u.UserID).Str("operation", op).Msg("access denied: " + reason)
	return fmt.Errorf("%s by %s: %w", op, u.UserID, domain.ErrForbidden)
}
