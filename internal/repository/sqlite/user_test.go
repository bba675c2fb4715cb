package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := model.NewUser("testuser", "test@example.com", model.RolePlayer)
	user.PasswordHash = "hash"
	user.Phone = "555-0100"

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestUserCreate_Duplicates(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "taken", "other@example.com"},
		{"same email", "other", "taken@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			createTestUser(t, db, "taken", model.RoleAdmin)

			dup := model.NewUser(tt.username, tt.email, model.RoleAdmin)
			dup.PasswordHash = "hash"
			err := db.CreateUser(context.Background(), dup)

			if !errors.Is(err, apperror.ErrDuplicate) {
				t.Fatalf("CreateUser() error = %v, want ErrDuplicate", err)
			}
		})
	}
}

func TestUserCreate_RejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)

	u := model.NewUser("x", "x@example.com", model.Role("owner"))
	u.PasswordHash = "hash"
	err := db.CreateUser(context.Background(), u)

	if err == nil {
		t.Fatal("CreateUser() should fail the role CHECK constraint")
	}
	if errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("CHECK failure misreported as duplicate: %v", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "getbyid_user", model.RoleCoach)

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}

	if found.Username != "getbyid_user" {
		t.Errorf("Username = %q, want %q", found.Username, "getbyid_user")
	}
	if found.Role != model.RoleCoach {
		t.Errorf("Role = %q, want %q", found.Role, model.RoleCoach)
	}
	if found.PasswordHash == "" {
		t.Error("PasswordHash should be loaded for credential checks")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "mailer", model.RoleAdmin)

	found, err := db.GetUserByEmail(context.Background(), "mailer@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	if _, err := db.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail(unknown) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "flip", model.RoleCoach)

	u.Role = model.RolePlayer
	u.Club = "FC Test"
	if err := db.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, _ := db.GetUserByID(ctx, u.ID)
	if found.Role != model.RolePlayer || found.Club != "FC Test" {
		t.Errorf("after update: role=%q club=%q", found.Role, found.Club)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := model.NewUser("ghost", "ghost@example.com", model.RoleAdmin)
	ghost.ID = "missing"
	if err := db.UpdateUser(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	coach := createTestUser(t, db, "coach", model.RoleCoach)
	if err := db.CreateCoach(ctx, model.NewCoachProfile(coach.ID)); err != nil {
		t.Fatalf("CreateCoach() error = %v", err)
	}
	if err := db.CreateToken(ctx, &model.AuthToken{Key: "k1", UserID: coach.ID}); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	group := &model.Group{Name: "U12", CoachID: coach.ID}
	if err := db.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if err := db.DeleteUser(ctx, coach.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := db.GetCoachByUserID(ctx, coach.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("coach profile survived user delete: %v", err)
	}
	if _, err := db.GetTokenByKey(ctx, "k1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("token survived user delete: %v", err)
	}
	if _, err := db.GetGroupByID(ctx, group.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("group survived coach delete: %v", err)
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.DeleteUser(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}
