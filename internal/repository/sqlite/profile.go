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
	"github.com/sakif/club-roster/internal/repository"
)

// Page size bounds shared by every list query.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func pageBounds(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// userSummarySelect projects the owning user under the "u." prefix. sqlx maps
// `u.email` onto the U field (tag "u") of the row structs below, so one JOIN
// fills both the profile and its nested user.
const userSummarySelect = `u.id AS "u.id", u.username AS "u.username", u.email AS "u.email",
	u.role AS "u.role", u.first_name AS "u.first_name", u.last_name AS "u.last_name",
	u.phone AS "u.phone", u.club AS "u.club"`

// =========================================================================
// COACH PROFILES
// =========================================================================

const coachColumns = `c.id, c.user_id, c.specialization, c.years_of_experience, c.certification,
	c.status, c.address, c.notes, c.created_at, c.updated_at`

type coachRow struct {
	model.CoachProfile
	U model.UserSummary `db:"u"`
}

func (r *coachRow) profile() model.CoachProfile {
	p := r.CoachProfile
	u := r.U
	p.User = &u
	return p
}

// CreateCoach inserts a coach profile. A second profile for the same user
// violates user_id UNIQUE and comes back as apperror.ErrDuplicate.
func (db *DB) CreateCoach(ctx context.Context, p *model.CoachProfile) error {
	now := time.Now()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, db.q,
		`INSERT INTO coach_profiles (id, user_id, specialization, years_of_experience,
		     certification, status, address, notes, created_at, updated_at)
		 VALUES (:id, :user_id, :specialization, :years_of_experience,
		     :certification, :status, :address, :notes, :created_at, :updated_at)`,
		p,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("user already has a coach profile")
		}
		return fmt.Errorf("sqlite: inserting coach profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (db *DB) getCoach(ctx context.Context, where, arg, notFoundID string) (*model.CoachProfile, error) {
	var row coachRow
	err := sqlx.GetContext(ctx, db.q, &row,
		`SELECT `+coachColumns+`, `+userSummarySelect+`
		 FROM coach_profiles c JOIN users u ON u.id = c.user_id
		 WHERE `+where+` = ?`, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("coach", notFoundID)
		}
		return nil, fmt.Errorf("sqlite: getting coach profile %s: %w", arg, err)
	}
	p := row.profile()
	return &p, nil
}

func (db *DB) GetCoachByID(ctx context.Context, id string) (*model.CoachProfile, error) {
	return db.getCoach(ctx, "c.id", id, id)
}

// GetCoachByUserID returns ErrNotFound when the user has no coach profile.
func (db *DB) GetCoachByUserID(ctx context.Context, userID string) (*model.CoachProfile, error) {
	return db.getCoach(ctx, "c.user_id", userID, "user:"+userID)
}

func (db *DB) ListCoaches(ctx context.Context, opts repository.ListOptions) ([]model.CoachProfile, error) {
	limit, offset := pageBounds(opts)

	var rows []coachRow
	err := sqlx.SelectContext(ctx, db.q, &rows,
		`SELECT `+coachColumns+`, `+userSummarySelect+`
		 FROM coach_profiles c JOIN users u ON u.id = c.user_id
		 ORDER BY c.created_at DESC, c.id
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing coach profiles: %w", err)
	}

	profiles := make([]model.CoachProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].profile())
	}
	return profiles, nil
}

// UpdateCoach rewrites the profile attributes. The owner (user_id) is fixed.
func (db *DB) UpdateCoach(ctx context.Context, p *model.CoachProfile) error {
	p.UpdatedAt = time.Now()

	result, err := sqlx.NamedExecContext(ctx, db.q,
		`UPDATE coach_profiles
		 SET specialization = :specialization, years_of_experience = :years_of_experience,
		     certification = :certification, status = :status, address = :address,
		     notes = :notes, updated_at = :updated_at
		 WHERE id = :id`,
		p,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating coach profile %s: %w", p.ID, err)
	}
	return checkAffected(result, apperror.NotFound("coach", p.ID))
}

func (db *DB) DeleteCoach(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM coach_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting coach profile %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("coach", id))
}

// =========================================================================
// PLAYER PROFILES
// =========================================================================

const playerColumns = `p.id, p.user_id, p.full_name, p.height, p.weight, p.position, p.status,
	p.group_label, p.subgroup_label, p.phone, p.address, p.notes, p.created_at, p.updated_at`

type playerRow struct {
	model.PlayerProfile
	U model.UserSummary `db:"u"`
}

func (r *playerRow) profile() model.PlayerProfile {
	p := r.PlayerProfile
	u := r.U
	p.User = &u
	return p
}

func (db *DB) CreatePlayer(ctx context.Context, p *model.PlayerProfile) error {
	now := time.Now()
	p.ID = xid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, db.q,
		`INSERT INTO player_profiles (id, user_id, full_name, height, weight, position, status,
		     group_label, subgroup_label, phone, address, notes, created_at, updated_at)
		 VALUES (:id, :user_id, :full_name, :height, :weight, :position, :status,
		     :group_label, :subgroup_label, :phone, :address, :notes, :created_at, :updated_at)`,
		p,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("user already has a player profile")
		}
		return fmt.Errorf("sqlite: inserting player profile for user %s: %w", p.UserID, err)
	}
	return nil
}

func (db *DB) getPlayer(ctx context.Context, where, arg, notFoundID string) (*model.PlayerProfile, error) {
	var row playerRow
	err := sqlx.GetContext(ctx, db.q, &row,
		`SELECT `+playerColumns+`, `+userSummarySelect+`
		 FROM player_profiles p JOIN users u ON u.id = p.user_id
		 WHERE `+where+` = ?`, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("player", notFoundID)
		}
		return nil, fmt.Errorf("sqlite: getting player profile %s: %w", arg, err)
	}
	p := row.profile()
	return &p, nil
}

func (db *DB) GetPlayerByID(ctx context.Context, id string) (*model.PlayerProfile, error) {
	return db.getPlayer(ctx, "p.id", id, id)
}

// GetPlayerByUserID returns ErrNotFound when the user has no player profile.
func (db *DB) GetPlayerByUserID(ctx context.Context, userID string) (*model.PlayerProfile, error) {
	return db.getPlayer(ctx, "p.user_id", userID, "user:"+userID)
}

// ListPlayers returns players, optionally only those whose group label
// matches filter.Group exactly.
func (db *DB) ListPlayers(ctx context.Context, filter repository.PlayerFilter) ([]model.PlayerProfile, error) {
	limit, offset := pageBounds(filter.ListOptions)

	query := `SELECT ` + playerColumns + `, ` + userSummarySelect + `
		FROM player_profiles p JOIN users u ON u.id = p.user_id`
	var args []any
	if filter.Group != "" {
		query += ` WHERE p.group_label = ?`
		args = append(args, filter.Group)
	}
	query += ` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []playerRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing player profiles: %w", err)
	}

	profiles := make([]model.PlayerProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].profile())
	}
	return profiles, nil
}

func (db *DB) UpdatePlayer(ctx context.Context, p *model.PlayerProfile) error {
	p.UpdatedAt = time.Now()

	result, err := sqlx.NamedExecContext(ctx, db.q,
		`UPDATE player_profiles
		 SET full_name = :full_name, height = :height, weight = :weight, position = :position,
		     status = :status, group_label = :group_label, subgroup_label = :subgroup_label,
		     phone = :phone, address = :address, notes = :notes, updated_at = :updated_at
		 WHERE id = :id`,
		p,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating player profile %s: %w", p.ID, err)
	}
	return checkAffected(result, apperror.NotFound("player", p.ID))
}

func (db *DB) DeletePlayer(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM player_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting player profile %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("player", id))
}
