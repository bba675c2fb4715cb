package model

import "testing"

func TestNewUser_DefaultRole(t *testing.T) {
	u := NewUser("  a1 ", " A1@X.com ", "")

	if u.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", u.Role, RoleAdmin)
	}
	if u.Username != "a1" {
		t.Errorf("Username = %q, want %q", u.Username, "a1")
	}
	if u.Email != "a1@x.com" {
		t.Errorf("Email = %q, want %q", u.Email, "a1@x.com")
	}
}

func TestNewUser_ExplicitRole(t *testing.T) {
	if got := NewUser("c", "c@x.com", RoleCoach).Role; got != RoleCoach {
		t.Errorf("Role = %q, want %q", got, RoleCoach)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"both names", User{Username: "jd", FirstName: "Jo", LastName: "Doe"}, "Jo Doe"},
		{"first only", User{Username: "jd", FirstName: "Jo"}, "Jo"},
		{"no names falls back to username", User{Username: "jd"}, "jd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleCoach, RolePlayer} {
		if !r.Valid() {
			t.Errorf("%q.Valid() = false, want true", r)
		}
	}
	if Role("owner").Valid() {
		t.Error(`Role("owner").Valid() = true, want false`)
	}
}

func TestNewPlayerProfileDefaults(t *testing.T) {
	p := NewPlayerProfile("u1", "Jo Doe")

	if p.Position != Midfielder || p.Status != PlayerActive || p.Height != 0 || p.Weight != 0 {
		t.Errorf("NewPlayerProfile defaults = %+v", p)
	}
}
