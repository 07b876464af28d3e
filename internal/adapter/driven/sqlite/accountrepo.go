package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// AccountRepo stores login accounts with bcrypt password hashes.
type AccountRepo struct {
	db   *DB
	cost int
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db, cost: bcrypt.DefaultCost}
}

// Create adds an account unless the username already exists. It reports
// whether an account was written.
func (r *AccountRepo) Create(ctx context.Context, username, password string) (bool, error) {
	if username == "" {
		return false, errors.New("create account: username is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return false, fmt.Errorf("hash password for %q: %w", username, err)
	}

	const query = `INSERT INTO accounts (username, password_hash) VALUES (?, ?) ON CONFLICT (username) DO NOTHING`
	result, err := r.db.Writer.ExecContext(ctx, query, username, string(hash))
	if err != nil {
		return false, fmt.Errorf("create account %q: %w", username, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n == 1, nil
}

// Verify checks the password for username. Unknown users and wrong passwords
// both return an error matching driven.ErrAuthentication.
func (r *AccountRepo) Verify(ctx context.Context, username, password string) error {
	const query = `SELECT password_hash FROM accounts WHERE username = ?`

	var hash string
	err := r.db.Reader.QueryRowContext(ctx, query, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("unknown user %q: %w", username, driven.ErrAuthentication)
	}
	if err != nil {
		return fmt.Errorf("look up account %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("user %q: %w", username, driven.ErrAuthentication)
		}
		return fmt.Errorf("compare password for %q: %w", username, err)
	}
	return nil
}
