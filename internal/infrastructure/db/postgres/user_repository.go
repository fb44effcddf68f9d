package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

const userColumns = `user_id, password_hash, last_name, first_name, address, male, role, client_number`

type userRepository struct {
	tx *sql.Tx
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	var clientNumber sql.NullString
	if err := row.Scan(&u.UserID, &u.PasswordHash, &u.LastName, &u.FirstName, &u.Address, &u.Male, &role, &clientNumber); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if u.Role == domain.RoleClient {
		u.Client = &domain.ClientProfile{Number: clientNumber.String, Accounts: map[string]*domain.Account{}}
	}
	return &u, nil
}

func (r userRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}

// Find locks the user row; password changes and renames go through it.
func (r userRepository) Find(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r userRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r userRepository) FindByClientNumber(ctx context.Context, number string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE client_number = $1`, number)
}

func (r userRepository) findOne(ctx context.Context, query, arg string) (*domain.User, error) {
	u, err := scanUser(r.tx.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r userRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY user_id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountManagers locks every manager row. A concurrent delete waits here and
// then counts what the first transaction left behind.
func (r userRepository) CountManagers(ctx context.Context) (int, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT user_id FROM users WHERE role = $1 FOR UPDATE`, string(domain.RoleManager))
	if err != nil {
		return 0, fmt.Errorf("count managers: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (r userRepository) Save(ctx context.Context, u *domain.User) error {
	var clientNumber sql.NullString
	if u.IsClient() {
		clientNumber = sql.NullString{String: u.Client.Number, Valid: true}
	}
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			last_name = EXCLUDED.last_name,
			first_name = EXCLUDED.first_name,
			address = EXCLUDED.address,
			male = EXCLUDED.male,
			client_number = EXCLUDED.client_number`,
		u.UserID, u.PasswordHash, u.LastName, u.FirstName, u.Address, u.Male, string(u.Role), clientNumber)
	if err != nil {
		return fmt.Errorf("save user: %w", mapUniqueViolation(err))
	}
	return nil
}

func (r userRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return nil
}
