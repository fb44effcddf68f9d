package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

const accountColumns = `account_number, owner_id, kind, balance, overdraft_limit`

type accountRepository struct {
	tx *sql.Tx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var kind string
	if err := row.Scan(&a.Number, &a.OwnerID, &kind, &a.Balance, &a.OverdraftLimit); err != nil {
		return nil, err
	}
	a.Kind = domain.AccountKind(kind)
	return &a, nil
}

func (r accountRepository) Exists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return exists, nil
}

func (r accountRepository) Find(ctx context.Context, number string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1 FOR UPDATE`, number)
}

func (r accountRepository) Get(ctx context.Context, number string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number)
}

func (r accountRepository) findOne(ctx context.Context, query, number string) (*domain.Account, error) {
	a, err := scanAccount(r.tx.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (r accountRepository) FindAllOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY account_number FOR UPDATE`, ownerID)
}

func (r accountRepository) ListOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY account_number`, ownerID)
}

func (r accountRepository) list(ctx context.Context, query, ownerID string) ([]*domain.Account, error) {
	rows, err := r.tx.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r accountRepository) Save(ctx context.Context, a *domain.Account) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_number) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			kind = EXCLUDED.kind,
			balance = EXCLUDED.balance,
			overdraft_limit = EXCLUDED.overdraft_limit`,
		a.Number, a.OwnerID, string(a.Kind), a.Balance, a.OverdraftLimit)
	if err != nil {
		return fmt.Errorf("save account: %w", mapUniqueViolation(err))
	}
	return nil
}

func (r accountRepository) Delete(ctx context.Context, number string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM accounts WHERE account_number = $1`, number)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	return nil
}
