// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for a
// single-club deployment, and ":memory:" gives every test its own fresh database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation.
//
// WHY sqlx ON TOP OF database/sql?
// sqlx keeps the database/sql model (pools, transactions, placeholders) and adds
// struct scanning through `db:"..."` tags: sqlx.GetContext fills a struct from one
// row, sqlx.SelectContext fills a slice. The same query helpers accept either the
// pool (*sqlx.DB) or a transaction (*sqlx.Tx) through the sqlx.ExtContext interface,
// which is how WithTx hands out transaction-bound repositories below.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/club-roster/internal/repository"
)

const driverName = "sqlite"

func init() {
	// sqlx picks the placeholder style from the driver name. It knows
	// "sqlite3" (mattn) but not "sqlite" (modernc), so register it.
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

// DB wraps an sqlx connection pool and provides repository methods.
//
// q is what every query runs against: the pool itself, or a transaction when
// this DB value was created by WithTx. Repository methods never touch conn
// directly, so the same code works inside and outside a transaction.
type DB struct {
	conn *sqlx.DB
	q    sqlx.ExtContext
	inTx bool
}

// connPragmas are applied by the driver to every connection it opens.
// foreign_keys is a per-connection setting, so a one-off PRAGMA would be lost
// whenever database/sql replaced the connection. The cascades (user →
// profiles, token, coached groups) depend on it.
var connPragmas = []string{"foreign_keys(1)", "journal_mode(WAL)"}

// dsn appends connPragmas to dbPath as modernc _pragma query parameters.
func dsn(dbPath string) string {
	params := make([]string, len(connPragmas))
	for i, p := range connPragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(params, "&")
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/club.db"  → file-based database (persistent)
//   - ":memory:"      → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open(driverName, dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// SQLite allows a single writer at a time, so a bigger pool only adds
	// "database is locked" retries. It also matters for ":memory:": every new
	// connection would otherwise see its own empty database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn, q: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WithTx runs fn inside a single transaction.
//
// TRANSACTION FLOW:
//  1. BeginTxx reserves the connection for this transaction
//  2. fn receives a *DB whose queries all go through the transaction
//  3. fn returns nil → Commit; error or panic → Rollback
//
// Calling WithTx on a DB that is already transaction-bound just runs fn in
// the enclosing transaction, so services can compose without caring who
// opened it.
func (db *DB) WithTx(ctx context.Context, fn func(repos repository.Repositories) error) (err error) {
	if db.inTx {
		return fn(db)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("sqlite: rolling back: %w", rbErr))
			}
		}
	}()

	if err = fn(&DB{conn: db.conn, q: tx, inTx: true}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// migrate runs all database migrations.
//
// For now, CREATE TABLE IF NOT EXISTS is safe: it won't error if the table exists.
//
// NAMING:
// "groups" and "key" are SQL keywords in recent SQLite versions, so the roster
// tables are coach_groups / coach_group_players and the token column is token_key.
func (db *DB) migrate() error {
	// users: no DEFAULT on role. The default lives in model.NewUser.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL CHECK (role IN ('admin', 'coach', 'player')),
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			club          TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// user_id is UNIQUE: a user has at most one profile of each kind.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS coach_profiles (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			specialization      TEXT NOT NULL DEFAULT '',
			years_of_experience INTEGER NOT NULL DEFAULT 0 CHECK (years_of_experience >= 0),
			certification       TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'Active',
			address             TEXT NOT NULL DEFAULT '',
			notes               TEXT NOT NULL DEFAULT '',
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating coach_profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS player_profiles (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			full_name      TEXT NOT NULL,
			height         REAL NOT NULL DEFAULT 0,
			weight         REAL NOT NULL DEFAULT 0,
			position       TEXT NOT NULL DEFAULT 'Midfielder',
			status         TEXT NOT NULL DEFAULT 'Active',
			group_label    TEXT NOT NULL DEFAULT '',
			subgroup_label TEXT NOT NULL DEFAULT '',
			phone          TEXT NOT NULL DEFAULT '',
			address        TEXT NOT NULL DEFAULT '',
			notes          TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_player_profiles_group ON player_profiles(group_label);
	`)
	if err != nil {
		return fmt.Errorf("creating player_profiles table: %w", err)
	}

	// The composite primary key on the join table is what makes a group's
	// player list a set.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS coach_groups (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			coach_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_coach_groups_coach_id ON coach_groups(coach_id);

		CREATE TABLE IF NOT EXISTS coach_group_players (
			group_id  TEXT NOT NULL REFERENCES coach_groups(id) ON DELETE CASCADE,
			player_id TEXT NOT NULL REFERENCES player_profiles(id) ON DELETE CASCADE,
			PRIMARY KEY (group_id, player_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating group tables: %w", err)
	}

	// user_id UNIQUE is the race guard for token get-or-create.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS auth_tokens (
			token_key  TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating auth_tokens table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint
// failure. modernc returns extended result codes; the message check covers a
// driver reporting only the primary SQLITE_CONSTRAINT code.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(se.Error(), "UNIQUE constraint failed")
}

// checkAffected turns "0 rows affected" into a NotFound error.
func checkAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
