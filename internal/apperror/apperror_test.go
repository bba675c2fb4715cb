// GO TESTING BASICS:
// 1. Test files MUST end in _test.go; Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Instead of writing a separate test function per constructor, we define a
// slice of cases and loop over them. Adding a case = adding one struct.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("coach", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("position", "unknown position"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "MissingFields wraps ErrMissingField",
			err:       MissingFields("email"),
			target:    ErrMissingField,
			wantMatch: true,
		},
		{
			name:      "Duplicate wraps ErrDuplicate",
			err:       Duplicate("username or email already exists"),
			target:    ErrDuplicate,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("admins only"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "Unexpected wraps ErrUnexpected",
			err:       Unexpected(errors.New("disk I/O error")),
			target:    ErrUnexpected,
			wantMatch: true,
		},
		{
			name:      "Duplicate does NOT match ErrConflict",
			err:       Duplicate("dup"),
			target:    ErrConflict,
			wantMatch: false,
		},
		{
			name:      "InvalidCredentials does NOT match ErrUnauthenticated",
			err:       InvalidCredentials(),
			target:    ErrUnauthenticated,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("player", "abc123"),
			wantMessage: "player not found with id abc123",
		},
		{
			name:        "MissingFields lists every field",
			err:         MissingFields("username", "full_name"),
			wantMessage: "missing required fields: username, full_name",
		},
		{
			name:        "InvalidCredentials is non-specific",
			err:         InvalidCredentials(),
			wantMessage: "invalid credentials",
		},
		{
			name:        "Unexpected hides the cause",
			err:         Unexpected(errors.New("SQL logic error near SELECT")),
			wantMessage: "the request could not be processed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnexpectedKeepsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Unexpected(cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Unexpected(cause), cause) = false, want true")
	}
}

func TestMissingFieldsList(t *testing.T) {
	err := MissingFields("email", "password")

	if len(err.Fields) != 2 || err.Fields[0] != "email" || err.Fields[1] != "password" {
		t.Errorf("Fields = %v, want [email password]", err.Fields)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("coach_id", "coach must have role coach")

	if err.Field != "coach_id" {
		t.Errorf("Field = %q, want %q", err.Field, "coach_id")
	}
}
