package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
)

// CreateToken stores a token. The caller generates the key.
//
// If the user already has a token (auth_tokens.user_id is UNIQUE) this
// returns apperror.ErrConflict; the auth service reacts by reading the
// existing row, which is how two concurrent first logins end up sharing one
// token instead of creating two.
func (db *DB) CreateToken(ctx context.Context, t *model.AuthToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := sqlx.NamedExecContext(ctx, db.q,
		`INSERT INTO auth_tokens (token_key, user_id, created_at)
		 VALUES (:token_key, :user_id, :created_at)`,
		t,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("token", t.UserID)
		}
		return fmt.Errorf("sqlite: inserting token for user %s: %w", t.UserID, err)
	}
	return nil
}

func (db *DB) GetTokenByUserID(ctx context.Context, userID string) (*model.AuthToken, error) {
	var t model.AuthToken
	err := sqlx.GetContext(ctx, db.q, &t,
		`SELECT token_key, user_id, created_at FROM auth_tokens WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("token", "user:"+userID)
		}
		return nil, fmt.Errorf("sqlite: getting token of user %s: %w", userID, err)
	}
	return &t, nil
}

// GetTokenByKey never puts the key into the error: keys are credentials.
func (db *DB) GetTokenByKey(ctx context.Context, key string) (*model.AuthToken, error) {
	var t model.AuthToken
	err := sqlx.GetContext(ctx, db.q, &t,
		`SELECT token_key, user_id, created_at FROM auth_tokens WHERE token_key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("token", "(redacted)")
		}
		return nil, fmt.Errorf("sqlite: getting token by key: %w", err)
	}
	return &t, nil
}

// DeleteTokenByUserID revokes the user's token. Deleting a token that does
// not exist is not an error: the end state is the same.
func (db *DB) DeleteTokenByUserID(ctx context.Context, userID string) error {
	if _, err := db.q.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("sqlite: deleting token of user %s: %w", userID, err)
	}
	return nil
}
