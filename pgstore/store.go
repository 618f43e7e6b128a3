// Package pgstore implements the engine's AccountProvider contract on
// PostgreSQL. Account records and their profile rows are written in one
// transaction, and username/email uniqueness is enforced by database
// constraints so concurrent duplicate registrations resolve to exactly
// one winner.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vipconnect/authcore"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const pgUniqueViolation = "23505"

// Store is a PostgreSQL-backed [authcore.AccountProvider]. Safe for
// concurrent use; it owns no state beyond the connection pool.
type Store struct {
	db *sql.DB
}

// New wraps an open connection pool. The caller keeps ownership of db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn with the pgx stdlib driver, verifies the
// connection, and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const accountColumns = `a.id, a.username, a.email, a.account_type, a.account_status,
	a.email_verified, a.age_verified, a.created_at, a.updated_at,
	p.first_name, p.last_name`

const accountFrom = `FROM accounts a
	JOIN account_profiles p ON p.account_id = a.id`

func scanAccount(row *sql.Row) (*authcore.Account, error) {
	var acc authcore.Account
	err := row.Scan(&acc.ID, &acc.Username, &acc.Email, &acc.AccountType,
		&acc.Status, &acc.EmailVerified, &acc.AgeVerified,
		&acc.CreatedAt, &acc.UpdatedAt, &acc.FirstName, &acc.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authcore.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &acc, nil
}

// CreateAccount inserts the account and its profile row in one
// transaction. Unique-constraint violations map to
// [authcore.ErrEmailTaken] or [authcore.ErrUsernameTaken] by constraint
// name.
func (s *Store) CreateAccount(ctx context.Context, input authcore.NewAccount) (*authcore.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()

	var acc authcore.Account
	err = tx.QueryRowContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, account_type,
		                       account_status, email_verified, age_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, username, email, account_type, account_status,
		           email_verified, age_verified, created_at, updated_at`,
		id, input.Username, input.Email, input.PasswordHash,
		input.AccountType, input.Status, input.EmailVerified, input.AgeVerified,
	).Scan(&acc.ID, &acc.Username, &acc.Email, &acc.AccountType, &acc.Status,
		&acc.EmailVerified, &acc.AgeVerified, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("inserting account: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO account_profiles (account_id, first_name, last_name)
		 VALUES ($1, $2, $3)`,
		id, input.FirstName, input.LastName)
	if err != nil {
		return nil, fmt.Errorf("inserting profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	acc.FirstName = input.FirstName
	acc.LastName = input.LastName
	return &acc, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key":
		return authcore.ErrEmailTaken
	case "accounts_username_key":
		return authcore.ErrUsernameTaken
	}
	return fmt.Errorf("unique violation on %s: %w", pgErr.ConstraintName, err)
}

// GetByID loads an account by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*authcore.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` `+accountFrom+` WHERE a.id = $1`, id)
	return scanAccount(row)
}

// GetByEmail loads an account by its lowercase-normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` `+accountFrom+` WHERE a.email = $1`, email)
	return scanAccount(row)
}

// GetByUsername loads an account by its lowercase-normalized username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*authcore.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` `+accountFrom+` WHERE a.username = $1`, username)
	return scanAccount(row)
}

// SetEmailVerified updates the email_verified flag and returns the fresh
// account view.
func (s *Store) SetEmailVerified(ctx context.Context, id string, verified bool) (*authcore.Account, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET email_verified = $2, updated_at = now() WHERE id = $1`,
		id, verified)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, authcore.ErrAccountNotFound
	}
	return s.GetByID(ctx, id)
}

// GetPasswordHash returns the stored password hash for id.
func (s *Store) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM accounts WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", authcore.ErrAccountNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return hash, nil
}

// UpdatePasswordHash replaces the stored password hash for id.
func (s *Store) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return authcore.ErrAccountNotFound
	}
	return nil
}
