package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

// stubStore keeps cloned records and rolls back on a failing transaction,
// mirroring what the real stores guarantee.
type stubStore struct {
	accounts map[string]*domain.Account
	users    map[string]*domain.User

	txErr   error    // if set, WithinTx returns this error without running fn
	saveErr error    // if set, every Save returns this error
	findLog []string // account numbers in the order Find was called
	lockLog []string // every locking read: "account:<n>", "owned:<id>" or "user:<id>"
	txCount int
}

func newStubStore() *stubStore {
	return &stubStore{
		accounts: make(map[string]*domain.Account),
		users:    make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Client != nil {
		c.Client = &domain.ClientProfile{Number: u.Client.Number, Accounts: map[string]*domain.Account{}}
	}
	return &c
}

func (s *stubStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	s.txCount++
	if s.txErr != nil {
		return s.txErr
	}

	accounts := make(map[string]*domain.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v.Clone()
	}
	users := make(map[string]*domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = cloneUser(v)
	}

	if err := fn(ctx, stubTx{s}); err != nil {
		s.accounts, s.users = accounts, users
		return err
	}
	return nil
}

type stubTx struct{ s *stubStore }

func (t stubTx) Accounts() ports.AccountRepository { return stubAccounts{t.s} }
func (t stubTx) Users() ports.UserRepository       { return stubUsers{t.s} }

type stubAccounts struct{ s *stubStore }

func (r stubAccounts) Exists(_ context.Context, number string) (bool, error) {
	_, ok := r.s.accounts[number]
	return ok, nil
}

func (r stubAccounts) Find(ctx context.Context, number string) (*domain.Account, error) {
	r.s.findLog = append(r.s.findLog, number)
	r.s.lockLog = append(r.s.lockLog, "account:"+number)
	return r.Get(ctx, number)
}

func (r stubAccounts) Get(_ context.Context, number string) (*domain.Account, error) {
	a, ok := r.s.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (r stubAccounts) FindAllOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	r.s.lockLog = append(r.s.lockLog, "owned:"+ownerID)
	return r.ListOwnedBy(ctx, ownerID)
}

func (r stubAccounts) ListOwnedBy(_ context.Context, ownerID string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range r.s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r stubAccounts) Save(_ context.Context, a *domain.Account) error {
	if r.s.saveErr != nil {
		return r.s.saveErr
	}
	r.s.accounts[a.Number] = a.Clone()
	return nil
}

func (r stubAccounts) Delete(_ context.Context, number string) error {
	if _, ok := r.s.accounts[number]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.s.accounts, number)
	return nil
}

type stubUsers struct{ s *stubStore }

func (r stubUsers) Exists(_ context.Context, userID string) (bool, error) {
	_, ok := r.s.users[userID]
	return ok, nil
}

func (r stubUsers) Find(ctx context.Context, userID string) (*domain.User, error) {
	r.s.lockLog = append(r.s.lockLog, "user:"+userID)
	return r.Get(ctx, userID)
}

func (r stubUsers) Get(_ context.Context, userID string) (*domain.User, error) {
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r stubUsers) FindByClientNumber(_ context.Context, number string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.IsClient() && u.Client.Number == number {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUsers) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r stubUsers) CountManagers(ctx context.Context) (int, error) {
	managers, _ := r.ListByRole(ctx, domain.RoleManager)
	return len(managers), nil
}

func (r stubUsers) Save(_ context.Context, u *domain.User) error {
	if r.s.saveErr != nil {
		return r.s.saveErr
	}
	r.s.users[u.UserID] = cloneUser(u)
	return nil
}

func (r stubUsers) Delete(_ context.Context, userID string) error {
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, userID)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var errStoreDown = errors.New("store unavailable")

// plainHasher stores "hashed:<raw>" so tests can assert on it without bcrypt.
type plainHasher struct{ err error }

func (h plainHasher) Hash(raw string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + raw, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedClient(s *stubStore, userID, clientNumber string) *domain.User {
	u, err := domain.NewClient(userID, "hashed:secret", "Doe", "Jane", "1 rue de Paris", false, clientNumber)
	if err != nil {
		panic(err)
	}
	s.users[userID] = u
	return cloneUser(u)
}

func seedManager(s *stubStore, userID string) *domain.User {
	u, err := domain.NewManager(userID, "hashed:secret", "Boss", "Ada", "", false)
	if err != nil {
		panic(err)
	}
	s.users[userID] = u
	return cloneUser(u)
}

func seedAccount(s *stubStore, number, ownerID, balance string) *domain.Account {
	a, err := domain.NewAccount(number, ownerID)
	if err != nil {
		panic(err)
	}
	a.Balance = dec(balance)
	s.accounts[number] = a
	return a.Clone()
}

func seedOverdraftAccount(s *stubStore, number, ownerID, balance, limit string) *domain.Account {
	a, err := domain.NewOverdraftAccount(number, ownerID, dec(limit))
	if err != nil {
		panic(err)
	}
	a.Balance = dec(balance)
	s.accounts[number] = a
	return a.Clone()
}
