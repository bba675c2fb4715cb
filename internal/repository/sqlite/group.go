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

const groupColumns = `g.id, g.name, g.coach_id, g.created_at, g.updated_at`

type groupRow struct {
	model.Group
	U model.UserSummary `db:"u"`
}

// CreateGroup inserts the group and its initial player set.
// Run it inside WithTx so a bad player id does not leave a half-made group.
func (db *DB) CreateGroup(ctx context.Context, g *model.Group) error {
	now := time.Now()
	g.ID = xid.New().String()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, db.q,
		`INSERT INTO coach_groups (id, name, coach_id, created_at, updated_at)
		 VALUES (:id, :name, :coach_id, :created_at, :updated_at)`,
		g,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting group %q: %w", g.Name, err)
	}

	if err := db.AddGroupPlayers(ctx, g.ID, g.PlayerIDs); err != nil {
		return err
	}
	return db.loadPlayerIDs(ctx, g)
}

func (db *DB) GetGroupByID(ctx context.Context, id string) (*model.Group, error) {
	var row groupRow
	err := sqlx.GetContext(ctx, db.q, &row,
		`SELECT `+groupColumns+`, `+userSummarySelect+`
		 FROM coach_groups g JOIN users u ON u.id = g.coach_id
		 WHERE g.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("group", id)
		}
		return nil, fmt.Errorf("sqlite: getting group %s: %w", id, err)
	}

	g := row.Group
	u := row.U
	g.Coach = &u
	if err := db.loadPlayerIDs(ctx, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns groups, optionally only those of one coach. Player ids
// are fetched with a single IN query for the whole page.
func (db *DB) ListGroups(ctx context.Context, filter repository.GroupFilter) ([]model.Group, error) {
	limit, offset := pageBounds(filter.ListOptions)

	query := `SELECT ` + groupColumns + `, ` + userSummarySelect + `
		FROM coach_groups g JOIN users u ON u.id = g.coach_id`
	var args []any
	if filter.CoachID != "" {
		query += ` WHERE g.coach_id = ?`
		args = append(args, filter.CoachID)
	}
	query += ` ORDER BY g.name, g.id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []groupRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing groups: %w", err)
	}

	groups := make([]model.Group, 0, len(rows))
	if len(rows) == 0 {
		return groups, nil
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	// sqlx.In expands the slice into (?, ?, ...) and flattens the args.
	inQuery, inArgs, err := sqlx.In(
		`SELECT group_id, player_id FROM coach_group_players
		 WHERE group_id IN (?) ORDER BY player_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("sqlite: building group players query: %w", err)
	}

	var members []struct {
		GroupID  string `db:"group_id"`
		PlayerID string `db:"player_id"`
	}
	if err := sqlx.SelectContext(ctx, db.q, &members, db.q.Rebind(inQuery), inArgs...); err != nil {
		return nil, fmt.Errorf("sqlite: listing group players: %w", err)
	}

	byGroup := make(map[string][]string, len(rows))
	for _, m := range members {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m.PlayerID)
	}

	for i := range rows {
		g := rows[i].Group
		u := rows[i].U
		g.Coach = &u
		g.PlayerIDs = byGroup[g.ID]
		if g.PlayerIDs == nil {
			g.PlayerIDs = []string{}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// UpdateGroup rewrites name and coach and replaces the player set with
// g.PlayerIDs.
func (db *DB) UpdateGroup(ctx context.Context, g *model.Group) error {
	g.UpdatedAt = time.Now()

	result, err := sqlx.NamedExecContext(ctx, db.q,
		`UPDATE coach_groups SET name = :name, coach_id = :coach_id, updated_at = :updated_at
		 WHERE id = :id`,
		g,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating group %s: %w", g.ID, err)
	}
	if err := checkAffected(result, apperror.NotFound("group", g.ID)); err != nil {
		return err
	}

	if _, err := db.q.ExecContext(ctx,
		`DELETE FROM coach_group_players WHERE group_id = ?`, g.ID); err != nil {
		return fmt.Errorf("sqlite: clearing players of group %s: %w", g.ID, err)
	}
	if err := db.AddGroupPlayers(ctx, g.ID, g.PlayerIDs); err != nil {
		return err
	}
	return db.loadPlayerIDs(ctx, g)
}

func (db *DB) DeleteGroup(ctx context.Context, id string) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM coach_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting group %s: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("group", id))
}

// AddGroupPlayers adds players to the set. INSERT OR IGNORE makes adding an
// existing member a no-op instead of a primary key error.
func (db *DB) AddGroupPlayers(ctx context.Context, groupID string, playerIDs []string) error {
	for _, pid := range playerIDs {
		_, err := db.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO coach_group_players (group_id, player_id) VALUES (?, ?)`,
			groupID, pid)
		if err != nil {
			return fmt.Errorf("sqlite: adding player %s to group %s: %w", pid, groupID, err)
		}
	}
	return nil
}

// RemoveGroupPlayer returns ErrNotFound when the player was not a member.
func (db *DB) RemoveGroupPlayer(ctx context.Context, groupID, playerID string) error {
	result, err := db.q.ExecContext(ctx,
		`DELETE FROM coach_group_players WHERE group_id = ? AND player_id = ?`,
		groupID, playerID)
	if err != nil {
		return fmt.Errorf("sqlite: removing player %s from group %s: %w", playerID, groupID, err)
	}
	return checkAffected(result, apperror.NotFound("group member", playerID))
}

func (db *DB) loadPlayerIDs(ctx context.Context, g *model.Group) error {
	ids := []string{}
	err := sqlx.SelectContext(ctx, db.q, &ids,
		`SELECT player_id FROM coach_group_players WHERE group_id = ? ORDER BY player_id`, g.ID)
	if err != nil {
		return fmt.Errorf("sqlite: loading players of group %s: %w", g.ID, err)
	}
	g.PlayerIDs = ids
	return nil
}
