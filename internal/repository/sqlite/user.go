package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
)

const userColumns = `id, username, email, password_hash, role, first_name, last_name,
	phone, club, created_at, updated_at`

// duplicateIdentity is the one message for both username and email
// collisions, matching what clients have always been shown.
func duplicateIdentity() error {
	return apperror.Duplicate("username or email already exists")
}

// CreateUser inserts a new user. The caller provides a hashed password;
// this layer never sees plaintext.
//
// A UNIQUE violation on username or email becomes apperror.ErrDuplicate so the
// service layer can tell it apart from a real database failure.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, db.q,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:id, :username, :email, :password_hash, :role, :first_name, :last_name,
		         :phone, :club, :created_at, :updated_at)`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateIdentity()
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := sqlx.GetContext(ctx, db.q, &u,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// GetUserByEmail looks a user up by (already normalized) email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := sqlx.GetContext(ctx, db.q, &u,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	return &u, nil
}

// UpdateUser rewrites every mutable column. id, password_hash and
// created_at are left alone.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := sqlx.NamedExecContext(ctx, db.q,
		`UPDATE users
		 SET username = :username, email = :email, role = :role,
		     first_name = :first_name, last_name = :last_name,
		     phone = :phone, club = :club, updated_at = :updated_at
		 WHERE id = :id`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateIdentity()
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	return checkAffected(result, apperror.NotFound("user", user.ID))
}

// DeleteUser removes a user. ON DELETE CASCADE takes the profiles, the
// token and any group the user coaches with it.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	return checkAffected(result, apperror.NotFound("user", id))
}
