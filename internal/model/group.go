package model

import "time"

// Group is a coach's named roster of players.
//
// PlayerIDs is a set: the repository stores it in a join table keyed by
// (group_id, player_id), so duplicates collapse and order carries no meaning.
// It is always returned sorted to keep responses stable.
type Group struct {
	ID        string       `json:"id"              db:"id"`
	Name      string       `json:"name"            db:"name"`
	CoachID   string       `json:"coach_id"        db:"coach_id"`
	Coach     *UserSummary `json:"coach,omitempty" db:"-"`
	PlayerIDs []string     `json:"players"         db:"-"`
	CreatedAt time.Time    `json:"created_at"      db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"      db:"updated_at"`
}

// AuthToken is the opaque bearer credential of a user. There is at most one
// per user; logins reuse it until it is revoked (or expires, when a TTL is
// configured).
type AuthToken struct {
	Key       string    `json:"-"          db:"token_key"`
	UserID    string    `json:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
