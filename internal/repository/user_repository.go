package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tracewell/venuetrace/internal/model"
	"github.com/tracewell/venuetrace/internal/utils"
)

// UserRepo is the credential store adapter for the 'users' table.  Every
// query is parameterized; caller-supplied values never reach SQL text.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password with the current scheme, inserts the user and
// returns its ID.  Duplicate-key violations on the username and email
// unique indexes are mapped to their sentinel errors.
func (r *UserRepo) Create(ctx context.Context, username, password, email, givenName, familyName, role string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, given_name, family_name, password_hash, role) VALUES (?,?,?,?,?,?)",
		username, email, givenName, familyName, hash, role)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return 0, dup
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByUsername fetches a user by username.  sql.ErrNoRows is returned
// unchanged when no row matches so callers can distinguish "unknown user"
// from a store failure.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,given_name,family_name,password_hash,role,created_at,updated_at FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.Email, &u.GivenName, &u.FamilyName, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdatePasswordHash rewrites a user's stored hash.  Used by the login
// path to migrate legacy-scheme hashes to the current scheme.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// duplicateKeyError maps a MySQL 1062 duplicate-entry error to the sentinel
// for whichever unique index was violated, or nil for any other error.
// Only the index name after "for key" is inspected; the message also embeds
// the duplicate value itself, which must never influence classification.
func duplicateKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	_, key, found := strings.Cut(msg, "for key")
	if found && strings.Contains(key, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}
