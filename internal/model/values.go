package model

import "database/sql/driver"

// Value implementations hand the enum types to database drivers as plain
// strings. Scanning back needs nothing: database/sql assigns TEXT columns to
// any string-kinded destination.

func (r Role) Value() (driver.Value, error) { return string(r), nil }

func (s CoachStatus) Value() (driver.Value, error) { return string(s), nil }

func (s PlayerStatus) Value() (driver.Value, error) { return string(s), nil }

func (p Position) Value() (driver.Value, error) { return string(p), nil }
