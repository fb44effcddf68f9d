package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

const uniqueViolation = "23505"

// LedgerStore implements ports.LedgerStore on a *sql.DB.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// WithinTx runs fn in a READ COMMITTED transaction. Rows read through the
// repositories are locked until commit or rollback.
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, ledgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping is the readiness check.
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type ledgerTx struct {
	tx *sql.Tx
}

func (t ledgerTx) Accounts() ports.AccountRepository { return accountRepository{tx: t.tx} }
func (t ledgerTx) Users() ports.UserRepository       { return userRepository{tx: t.tx} }

// mapUniqueViolation turns a unique constraint failure into the matching
// duplicate error.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "users_client_number_key":
		return fmt.Errorf("%w: %s", domain.ErrDuplicateClientNumber, pqErr.Detail)
	case "users_pkey":
		return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, pqErr.Detail)
	case "accounts_pkey":
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, pqErr.Detail)
	}
	return err
}
