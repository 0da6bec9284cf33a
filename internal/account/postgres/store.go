// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

// Package postgres implements account.Store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tonearm/accounts/internal/account"
)

// Unique index names created by the accounts migration. The email index is
// created first so a row colliding on both columns reports the email.
const (
	emailKeyIndex    = "accounts_email_key_idx"
	usernameKeyIndex = "accounts_username_key_idx"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements account.Store using PostgreSQL.
type Store struct {
	db      DB
	folding account.Folding
}

// NewStore creates a new Store.
func NewStore(db DB, folding account.Folding) *Store {
	return &Store{db: db, folding: folding}
}

// Create stores a new account.
func (s *Store) Create(ctx context.Context, acc *account.Account) error {
	emailKey := s.folding.Key(acc.Email)

	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (
			id, username, email, username_key, email_key,
			password_hash, preference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		acc.ID.String(),
		acc.Username,
		acc.Email,
		s.folding.Key(acc.Username),
		emailKey,
		acc.PasswordHash,
		string(acc.Preference),
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case emailKeyIndex:
			return duplicateEmail(acc, err)
		case usernameKeyIndex:
			// A concurrent insert may have claimed the email after this
			// statement's username check ran; email collisions win.
			taken, checkErr := s.emailTaken(ctx, emailKey)
			if checkErr == nil && taken {
				return duplicateEmail(acc, err)
			}
			return oops.Code(account.CodeDuplicateUsername).
				With("username", acc.Username).
				Wrap(errors.Join(account.ErrDuplicateUsername, err))
		}
	}

	return oops.Code("ACCOUNT_CREATE_FAILED").
		With("operation", "insert account").
		With("username", acc.Username).
		Wrap(err)
}

// FindByEmail returns the account registered with email, or nil.
func (s *Store) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, preference, created_at, updated_at
		FROM accounts
		WHERE email_key = $1
	`, s.folding.Key(email))

	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil //nolint:nilnil // no match is a normal outcome
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FIND_BY_EMAIL_FAILED").
			With("operation", "find account by email").
			With("email", email).
			Wrap(err)
	}
	return acc, nil
}

func (s *Store) emailTaken(ctx context.Context, emailKey string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email_key = $1)`,
		emailKey,
	).Scan(&exists)
	if err != nil {
		return false, oops.Code("ACCOUNT_EMAIL_CHECK_FAILED").Wrap(err)
	}
	return exists, nil
}

func duplicateEmail(acc *account.Account, cause error) error {
	return oops.Code(account.CodeDuplicateEmail).
		With("email", acc.Email).
		Wrap(errors.Join(account.ErrDuplicateEmail, cause))
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		idStr        string
		username     string
		email        string
		passwordHash string
		preference   string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&idStr, &username, &email, &passwordHash, &preference, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers match on pgx.ErrNoRows
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	pref, err := account.ParsePreference(preference)
	if err != nil {
		return nil, oops.With("id", idStr).Wrap(err)
	}

	return &account.Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Preference:   pref,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Compile-time interface check.
var _ account.Store = (*Store)(nil)
