package model

import "time"

// CoachStatus is the availability of a coach.
type CoachStatus string

const (
	CoachActive   CoachStatus = "Active"
	CoachInactive CoachStatus = "Inactive"
	CoachOnLeave  CoachStatus = "On Leave"
)

func (s CoachStatus) Valid() bool {
	switch s {
	case CoachActive, CoachInactive, CoachOnLeave:
		return true
	}
	return false
}

// PlayerStatus is the availability of a player.
type PlayerStatus string

const (
	PlayerActive   PlayerStatus = "Active"
	PlayerInactive PlayerStatus = "Inactive"
	PlayerInjured  PlayerStatus = "Injured"
)

func (s PlayerStatus) Valid() bool {
	switch s {
	case PlayerActive, PlayerInactive, PlayerInjured:
		return true
	}
	return false
}

// Position is where a player lines up.
type Position string

const (
	Midfielder Position = "Midfielder"
	Defender   Position = "Defender"
	Forward    Position = "Forward"
	Goalkeeper Position = "Goalkeeper"
)

func (p Position) Valid() bool {
	switch p {
	case Midfielder, Defender, Forward, Goalkeeper:
		return true
	}
	return false
}

// CoachProfile is owned 1:1 by a user whose role is coach.
//
// User is filled by the repository on reads (joined from users) and is never
// written back; the db:"-" tag keeps sqlx from looking for a column.
type CoachProfile struct {
	ID                string       `json:"id"                  db:"id"`
	UserID            string       `json:"user_id"             db:"user_id"`
	User              *UserSummary `json:"user,omitempty"      db:"-"`
	Specialization    string       `json:"specialization"      db:"specialization"`
	YearsOfExperience int          `json:"years_of_experience" db:"years_of_experience"`
	Certification     string       `json:"certification"       db:"certification"`
	Status            CoachStatus  `json:"status"              db:"status"`
	Address           string       `json:"address"             db:"address"`
	Notes             string       `json:"notes"               db:"notes"`
	CreatedAt         time.Time    `json:"created_at"          db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"          db:"updated_at"`
}

// NewCoachProfile returns an empty profile with the default status.
func NewCoachProfile(userID string) *CoachProfile {
	return &CoachProfile{UserID: userID, Status: CoachActive}
}

// PlayerProfile is owned 1:1 by a user whose role is player.
//
// Group and Subgroup are free-text labels used for filtering the player list.
// They are unrelated to the Group entity (a coach's roster).
type PlayerProfile struct {
	ID        string       `json:"id"             db:"id"`
	UserID    string       `json:"user_id"        db:"user_id"`
	User      *UserSummary `json:"user,omitempty" db:"-"`
	FullName  string       `json:"full_name"      db:"full_name"`
	Height    float64      `json:"height"         db:"height"`
	Weight    float64      `json:"weight"         db:"weight"`
	Position  Position     `json:"position"       db:"position"`
	Status    PlayerStatus `json:"status"         db:"status"`
	Group     string       `json:"group"          db:"group_label"`
	Subgroup  string       `json:"subgroup"       db:"subgroup_label"`
	Phone     string       `json:"phone"          db:"phone"`
	Address   string       `json:"address"        db:"address"`
	Notes     string       `json:"notes"          db:"notes"`
	CreatedAt time.Time    `json:"created_at"     db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"     db:"updated_at"`
}

// NewPlayerProfile returns a profile with the documented defaults:
// height and weight 0, Midfielder, Active.
func NewPlayerProfile(userID, fullName string) *PlayerProfile {
	return &PlayerProfile{
		UserID:   userID,
		FullName: fullName,
		Position: Midfielder,
		Status:   PlayerActive,
	}
}
