// Package model defines the data structures used throughout the application.
package model

import (
	"strings"
	"time"
)

// Role decides which profile a user owns and which operations it may perform.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

// DefaultRole is applied by NewUser when the caller leaves the role empty.
// The users table deliberately has no column default: the fallback lives
// here, where a reader of the construction call can see it.
const DefaultRole = RoleAdmin

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RolePlayer:
		return true
	}
	return false
}

// User represents an account of any role.
//
// WHY PasswordHash HAS json:"-"?
// The struct is returned by several endpoints (login summary, /me, role
// change). The dash tag tells encoding/json to skip the field entirely, so the
// bcrypt hash can never leak through a response no matter who serializes it.
//
// The db tags are read by sqlx when scanning rows into the struct.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Username     string    `json:"username"   db:"username"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	Role         Role      `json:"role"       db:"role"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	Phone        string    `json:"phone"      db:"phone"`
	Club         string    `json:"club"       db:"club"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser builds an unsaved user with normalized identity fields.
// An empty role falls back to DefaultRole.
func NewUser(username, email string, role Role) *User {
	if role == "" {
		role = DefaultRole
	}
	return &User{
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
		Role:     role,
	}
}

// NormalizeEmail trims and lower-cases an address so that uniqueness and
// login lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName is "First Last", or the username when both names are blank.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Summary returns the public projection embedded in other resources.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Club:      u.Club,
	}
}

// UserSummary is the user as seen from a profile or a group.
type UserSummary struct {
	ID        string `json:"id"         db:"id"`
	Username  string `json:"username"   db:"username"`
	Email     string `json:"email"      db:"email"`
	Role      Role   `json:"role"       db:"role"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name"  db:"last_name"`
	Phone     string `json:"phone"      db:"phone"`
	Club      string `json:"club"       db:"club"`
}
