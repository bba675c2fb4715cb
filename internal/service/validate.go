package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/auth"
)

// Input limits. Values above them are rejected with a validation error.
const (
	MaxUsernameLength = 150
	MaxNameLength     = 100
	MaxPasswordBytes  = auth.MaxPasswordBytes
	MaxGroupNameLen   = 100
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// field is one named request value checked by requireFields.
type field struct {
	name  string
	value string
}

// requireFields reports every blank field at once, in the order given.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}
	return nil
}

func checkEmail(email string) error {
	if err := validate.Var(email, "email"); err != nil {
		return apperror.ValidationFailed("email", "enter a valid email address")
	}
	return nil
}

func checkMaxLen(name, value string, limit int) error {
	if len(value) > limit {
		return apperror.ValidationFailed(name, fmt.Sprintf("%s must be %d characters or less", name, limit))
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if err := validate.Var(v, "gte=0"); err != nil {
		return apperror.ValidationFailed(name, name+" must not be negative")
	}
	return nil
}

// storeError passes typed errors (duplicate, not found, validation...)
// through untouched and turns anything else into apperror.Unexpected after
// logging the cause. Clients then see a generic message, never SQL.
func storeError(logger *slog.Logger, msg string, err error, attrs ...any) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
	return apperror.Unexpected(err)
}
