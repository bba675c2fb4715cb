package sqlite

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// seedRoster creates one coach and n players and returns their ids.
func seedRoster(t *testing.T, db *DB, n int) (coachID string, playerIDs []string) {
	t.Helper()
	ctx := context.Background()

	coach := createTestUser(t, db, "coach", model.RoleCoach)
	for i := range n {
		u := createTestUser(t, db, "player"+string(rune('a'+i)), model.RolePlayer)
		p := model.NewPlayerProfile(u.ID, u.Username)
		if err := db.CreatePlayer(ctx, p); err != nil {
			t.Fatalf("CreatePlayer() error = %v", err)
		}
		playerIDs = append(playerIDs, p.ID)
	}
	slices.Sort(playerIDs)
	return coach.ID, playerIDs
}

func TestGroupCreate_CollapsesDuplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	coachID, players := seedRoster(t, db, 2)

	g := &model.Group{
		Name:      "U12",
		CoachID:   coachID,
		PlayerIDs: []string{players[1], players[0], players[1]},
	}
	if err := db.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	if !slices.Equal(g.PlayerIDs, players) {
		t.Errorf("PlayerIDs = %v, want %v", g.PlayerIDs, players)
	}

	got, err := db.GetGroupByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroupByID() error = %v", err)
	}
	if got.Coach == nil || got.Coach.ID != coachID {
		t.Errorf("Coach = %+v, want id %s", got.Coach, coachID)
	}
	if !slices.Equal(got.PlayerIDs, players) {
		t.Errorf("stored PlayerIDs = %v, want %v", got.PlayerIDs, players)
	}
}

func TestGroupCreate_UnknownPlayer(t *testing.T) {
	db := newTestDB(t)
	coachID, _ := seedRoster(t, db, 0)

	g := &model.Group{Name: "U12", CoachID: coachID, PlayerIDs: []string{"nope"}}
	if err := db.CreateGroup(context.Background(), g); err == nil {
		t.Fatal("CreateGroup() with an unknown player should fail the foreign key")
	}
}

func TestGroupCreate_EmptyPlayersIsNotNil(t *testing.T) {
	db := newTestDB(t)
	coachID, _ := seedRoster(t, db, 0)

	g := &model.Group{Name: "Empty", CoachID: coachID}
	if err := db.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	// serialized as [] rather than null
	if g.PlayerIDs == nil {
		t.Error("PlayerIDs is nil, want empty slice")
	}
}

func TestListGroups_CoachFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	coachID, players := seedRoster(t, db, 1)
	other := createTestUser(t, db, "other", model.RoleCoach)

	for _, g := range []*model.Group{
		{Name: "B", CoachID: coachID, PlayerIDs: players},
		{Name: "A", CoachID: coachID},
		{Name: "C", CoachID: other.ID},
	} {
		if err := db.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup(%s) error = %v", g.Name, err)
		}
	}

	all, err := db.ListGroups(ctx, repository.GroupFilter{})
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// ordered by name
	if all[0].Name != "A" || all[1].Name != "B" {
		t.Errorf("order = %s, %s", all[0].Name, all[1].Name)
	}
	if !slices.Equal(all[1].PlayerIDs, players) {
		t.Errorf("B players = %v, want %v", all[1].PlayerIDs, players)
	}

	mine, err := db.ListGroups(ctx, repository.GroupFilter{CoachID: coachID})
	if err != nil {
		t.Fatalf("ListGroups(coach) error = %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("len = %d, want 2", len(mine))
	}
}

func TestGroupUpdate_ReplacesPlayers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	coachID, players := seedRoster(t, db, 3)

	g := &model.Group{Name: "U12", CoachID: coachID, PlayerIDs: players[:2]}
	if err := db.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	g.Name = "U13"
	g.PlayerIDs = []string{players[2]}
	if err := db.UpdateGroup(ctx, g); err != nil {
		t.Fatalf("UpdateGroup() error = %v", err)
	}

	got, _ := db.GetGroupByID(ctx, g.ID)
	if got.Name != "U13" {
		t.Errorf("Name = %q, want U13", got.Name)
	}
	if !slices.Equal(got.PlayerIDs, []string{players[2]}) {
		t.Errorf("PlayerIDs = %v, want [%s]", got.PlayerIDs, players[2])
	}
}

func TestGroupMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	coachID, players := seedRoster(t, db, 2)

	g := &model.Group{Name: "U12", CoachID: coachID}
	if err := db.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	// adding twice is a no-op
	for range 2 {
		if err := db.AddGroupPlayers(ctx, g.ID, players); err != nil {
			t.Fatalf("AddGroupPlayers() error = %v", err)
		}
	}
	got, _ := db.GetGroupByID(ctx, g.ID)
	if len(got.PlayerIDs) != 2 {
		t.Fatalf("PlayerIDs = %v, want 2 members", got.PlayerIDs)
	}

	if err := db.RemoveGroupPlayer(ctx, g.ID, players[0]); err != nil {
		t.Fatalf("RemoveGroupPlayer() error = %v", err)
	}
	if err := db.RemoveGroupPlayer(ctx, g.ID, players[0]); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second RemoveGroupPlayer() error = %v, want ErrNotFound", err)
	}

	// deleting a player profile drops its memberships
	if err := db.DeletePlayer(ctx, players[1]); err != nil {
		t.Fatalf("DeletePlayer() error = %v", err)
	}
	got, _ = db.GetGroupByID(ctx, g.ID)
	if len(got.PlayerIDs) != 0 {
		t.Errorf("PlayerIDs = %v, want none", got.PlayerIDs)
	}
}

func TestGroupDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	coachID, _ := seedRoster(t, db, 0)

	g := &model.Group{Name: "U12", CoachID: coachID}
	if err := db.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if err := db.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}
	if _, err := db.GetGroupByID(ctx, g.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetGroupByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteGroup(ctx, g.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteGroup() error = %v, want ErrNotFound", err)
	}
}
