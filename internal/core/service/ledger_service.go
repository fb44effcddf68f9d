package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/pkg/metrics"
)

const (
	defaultAccountPrefix = "FR"
	accountNumberDigits  = 10
	maxNumberAttempts    = 5
)

// PasswordHasher produces the stored form of a new password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type LedgerService struct {
	store  ports.LedgerStore
	hasher PasswordHasher
	prefix string
	logger zerolog.Logger
}

// NewLedgerService returns a LedgerService. accountPrefix is the two-letter
// prefix of generated account numbers ("FR" when empty or malformed).
func NewLedgerService(store ports.LedgerStore, hasher PasswordHasher, accountPrefix string, logger zerolog.Logger) *LedgerService {
	if domain.ValidateAccountNumber(accountPrefix+strings.Repeat("0", accountNumberDigits)) != nil {
		accountPrefix = defaultAccountPrefix
	}
	return &LedgerService{store: store, hasher: hasher, prefix: accountPrefix, logger: logger}
}

// CreateClient registers a client with a modern password hash.
func (s *LedgerService) CreateClient(ctx context.Context, in ports.CreateClientInput) (*domain.User, error) {
	user, err := domain.NewClient(in.UserID, "", in.LastName, in.FirstName, in.Address, in.Male, in.ClientNumber)
	if err != nil {
		return nil, s.observe("create_client", fmt.Errorf("create client: %w", err))
	}
	if user.PasswordHash, err = s.hashPassword(in.Password); err != nil {
		return nil, s.observe("create_client", fmt.Errorf("create client: %w", err))
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		if err := ensureUserIDFree(ctx, tx, user.UserID); err != nil {
			return err
		}
		if err := ensureClientNumberFree(ctx, tx, user.Client.Number, ""); err != nil {
			return err
		}
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, s.observe("create_client", fmt.Errorf("create client %s: %w", in.UserID, err))
	}

	s.logger.Info().Str("user_id", user.UserID).Str("client_number", user.Client.Number).Msg("client created")
	return user, s.observe("create_client", nil)
}

// CreateManager registers a manager with a modern password hash.
func (s *LedgerService) CreateManager(ctx context.Context, in ports.CreateManagerInput) (*domain.User, error) {
	user, err := domain.NewManager(in.UserID, "", in.LastName, in.FirstName, in.Address, in.Male)
	if err != nil {
		return nil, s.observe("create_manager", fmt.Errorf("create manager: %w", err))
	}
	if user.PasswordHash, err = s.hashPassword(in.Password); err != nil {
		return nil, s.observe("create_manager", fmt.Errorf("create manager: %w", err))
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		if err := ensureUserIDFree(ctx, tx, user.UserID); err != nil {
			return err
		}
		return tx.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, s.observe("create_manager", fmt.Errorf("create manager %s: %w", in.UserID, err))
	}

	s.logger.Info().Str("user_id", user.UserID).Msg("manager created")
	return user, s.observe("create_manager", nil)
}

// CreateAccount opens an empty account for a client. When no number is
// supplied one is generated, retrying on collision.
func (s *LedgerService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	generated := in.Number == ""
	number := in.Number
	if generated {
		number = s.generateAccountNumber()
	}
	account, err := s.newAccount(number, in)
	if err != nil {
		return nil, s.observe("create_account", fmt.Errorf("create account: %w", err))
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		owner, err := tx.Users().Find(ctx, in.OwnerID)
		if err != nil {
			return err
		}
		if !owner.IsClient() {
			return fmt.Errorf("owner %s: %w", owner.UserID, domain.ErrNotAClient)
		}

		for attempt := 1; ; attempt++ {
			exists, err := tx.Accounts().Exists(ctx, account.Number)
			if err != nil {
				return err
			}
			if !exists {
				break
			}
			if !generated || attempt >= maxNumberAttempts {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, account.Number)
			}
			account.Number = s.generateAccountNumber()
		}
		return tx.Accounts().Save(ctx, account)
	})
	if err != nil {
		return nil, s.observe("create_account", fmt.Errorf("create account for %s: %w", in.OwnerID, err))
	}

	s.logger.Info().
		Str("account", account.Number).
		Str("owner_id", account.OwnerID).
		Str("kind", string(account.Kind)).
		Msg("account created")
	return account, s.observe("create_account", nil)
}

func (s *LedgerService) newAccount(number string, in ports.CreateAccountInput) (*domain.Account, error) {
	if in.OverdraftLimit != nil {
		return domain.NewOverdraftAccount(number, in.OwnerID, *in.OverdraftLimit)
	}
	return domain.NewAccount(number, in.OwnerID)
}

// Credit adds amount to a single account.
func (s *LedgerService) Credit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.mutateAccount(ctx, number, func(a *domain.Account) error { return a.Credit(amount) })
	return account, s.observe("credit", err)
}

// Debit removes amount from a single account.
func (s *LedgerService) Debit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.mutateAccount(ctx, number, func(a *domain.Account) error { return a.Debit(amount) })
	return account, s.observe("debit", err)
}

// ChangeOverdraftLimit delegates to Account.SetOverdraftLimit and persists on success.
func (s *LedgerService) ChangeOverdraftLimit(ctx context.Context, number string, limit decimal.Decimal) (*domain.Account, error) {
	account, err := s.mutateAccount(ctx, number, func(a *domain.Account) error { return a.SetOverdraftLimit(limit) })
	return account, s.observe("change_overdraft_limit", err)
}

func (s *LedgerService) mutateAccount(ctx context.Context, number string, mutate func(*domain.Account) error) (*domain.Account, error) {
	var out *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		account, err := tx.Accounts().Find(ctx, number)
		if err != nil {
			return err
		}
		if err := mutate(account); err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, account); err != nil {
			return err
		}
		out = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", number, err)
	}
	return out, nil
}

// Transfer debits from and credits to in one transaction. Both accounts
// are locked in account-number order so concurrent transfers between the
// same pair cannot deadlock.
func (s *LedgerService) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	if from == to {
		return s.observe("transfer", fmt.Errorf("transfer %s: %w", from, domain.ErrSameAccount))
	}

	start := time.Now()
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		locked := make(map[string]*domain.Account, 2)
		for _, number := range []string{first, second} {
			account, err := tx.Accounts().Find(ctx, number)
			if err != nil {
				return err
			}
			locked[number] = account
		}

		src, dst := locked[from], locked[to]
		if err := src.Debit(amount); err != nil {
			return err
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, src); err != nil {
			return err
		}
		return tx.Accounts().Save(ctx, dst)
	})
	if err != nil {
		return s.observe("transfer", fmt.Errorf("transfer %s -> %s: %w", from, to, err))
	}

	metrics.TransferredAmountTotal.Add(amount.InexactFloat64())
	s.logger.Info().
		Str("from", from).
		Str("to", to).
		Str("amount", amount.String()).
		Dur("took", time.Since(start)).
		Msg("transfer committed")
	return s.observe("transfer", nil)
}

// DeleteAccount removes an account whose balance is zero.
func (s *LedgerService) DeleteAccount(ctx context.Context, number string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		account, err := tx.Accounts().Find(ctx, number)
		if err != nil {
			return err
		}
		if !account.CanBeDeleted() {
			return fmt.Errorf("balance %s: %w", account.Balance, domain.ErrNonZeroBalance)
		}
		return tx.Accounts().Delete(ctx, number)
	})
	if err != nil {
		return s.observe("delete_account", fmt.Errorf("delete account %s: %w", number, err))
	}

	s.logger.Info().Str("account", number).Msg("account deleted")
	return s.observe("delete_account", nil)
}

// DeleteUser removes a client whose accounts are all at zero (together with
// those accounts), or a manager when another manager remains.
func (s *LedgerService) DeleteUser(ctx context.Context, userID string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		user, err := tx.Users().Find(ctx, userID)
		if err != nil {
			return err
		}

		switch user.Role {
		case domain.RoleClient:
			accounts, err := tx.Accounts().FindAllOwnedBy(ctx, userID)
			if err != nil {
				return err
			}
			user.AttachAccounts(accounts)
			if nz := user.NonZeroAccounts(); len(nz) > 0 {
				return fmt.Errorf("account %s has balance %s: %w", nz[0].Number, nz[0].Balance, domain.ErrNonZeroBalance)
			}
			for _, a := range accounts {
				if err := tx.Accounts().Delete(ctx, a.Number); err != nil {
					return err
				}
			}
		case domain.RoleManager:
			n, err := tx.Users().CountManagers(ctx)
			if err != nil {
				return err
			}
			if n <= 1 {
				return domain.ErrLastManager
			}
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return s.observe("delete_user", fmt.Errorf("delete user %s: %w", userID, err))
	}

	s.logger.Info().Str("user_id", userID).Msg("user deleted")
	return s.observe("delete_user", nil)
}

// ChangeClientNumber renames a client number after re-validating it.
func (s *LedgerService) ChangeClientNumber(ctx context.Context, userID, number string) (*domain.User, error) {
	var out *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		user, err := tx.Users().Find(ctx, userID)
		if err != nil {
			return err
		}
		if err := user.ChangeClientNumber(number); err != nil {
			return err
		}
		if err := ensureClientNumberFree(ctx, tx, number, userID); err != nil {
			return err
		}
		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, s.observe("change_client_number", fmt.Errorf("change client number of %s: %w", userID, err))
	}
	return out, s.observe("change_client_number", nil)
}

func (s *LedgerService) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	var out *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		a, err := tx.Accounts().Get(ctx, number)
		out = a
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", number, err)
	}
	return out, nil
}

// GetUser returns a user; for clients the owned accounts are attached.
func (s *LedgerService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		u, err := readUser(ctx, tx, userID)
		out = u
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return out, nil
}

func (s *LedgerService) ListAccountsOf(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	var out []*domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		if _, err := tx.Users().Get(ctx, ownerID); err != nil {
			return err
		}
		accounts, err := tx.Accounts().ListOwnedBy(ctx, ownerID)
		out = accounts
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts of %s: %w", ownerID, err)
	}
	return out, nil
}

func (s *LedgerService) ListClients(ctx context.Context) ([]*domain.User, error) {
	return s.listByRole(ctx, domain.RoleClient)
}

func (s *LedgerService) ListManagers(ctx context.Context) ([]*domain.User, error) {
	return s.listByRole(ctx, domain.RoleManager)
}

func (s *LedgerService) listByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		users, err := tx.Users().ListByRole(ctx, role)
		out = users
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", role, err)
	}
	return out, nil
}

func (s *LedgerService) hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", domain.ErrInvalidPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPassword, err)
	}
	return hash, nil
}

// observe records the outcome of an operation and returns err unchanged.
func (s *LedgerService) observe(operation string, err error) error {
	result := "ok"
	if err != nil {
		kind := domain.KindOf(err)
		result = string(kind)
		ev := s.logger.Warn()
		if kind == domain.KindTechnical {
			ev = s.logger.Error()
		}
		ev.Err(err).Str("operation", operation).Str("kind", result).Msg("ledger operation rejected")
	}
	metrics.LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
	return err
}

// generateAccountNumber returns <prefix> followed by 10 random digits.
func (s *LedgerService) generateAccountNumber() string {
	max := big.NewInt(10_000_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%s%010d", s.prefix, time.Now().UnixNano()%max.Int64())
	}
	return fmt.Sprintf("%s%0*d", s.prefix, accountNumberDigits, n.Int64())
}

// readUser loads a user without locking it; for clients the owned accounts
// are attached.
func readUser(ctx context.Context, tx ports.LedgerTx, userID string) (*domain.User, error) {
	u, err := tx.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsClient() {
		accounts, err := tx.Accounts().ListOwnedBy(ctx, userID)
		if err != nil {
			return nil, err
		}
		u.AttachAccounts(accounts)
	}
	return u, nil
}

func ensureUserIDFree(ctx context.Context, tx ports.LedgerTx, userID string) error {
	exists, err := tx.Users().Exists(ctx, userID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, userID)
	}
	return nil
}

// ensureClientNumberFree fails when number belongs to a user other than self.
func ensureClientNumberFree(ctx context.Context, tx ports.LedgerTx, number, self string) error {
	holder, err := tx.Users().FindByClientNumber(ctx, number)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case holder.UserID != self:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateClientNumber, number)
	}
	return nil
}
