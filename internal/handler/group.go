package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/service"
)

// GroupService is the roster management the group endpoints call.
type GroupService interface {
	Create(ctx context.Context, in service.GroupInput) (*model.Group, error)
	Get(ctx context.Context, id string) (*model.Group, error)
	List(ctx context.Context, coachID string, limit, offset int) ([]model.Group, error)
	Update(ctx context.Context, id string, in service.GroupInput) (*model.Group, error)
	Delete(ctx context.Context, id string) error
	AddPlayers(ctx context.Context, id string, playerIDs []string) (*model.Group, error)
	RemovePlayer(ctx context.Context, id, playerID string) (*model.Group, error)
}

// AddPlayersRequest is the body of POST /groups/{id}/players/.
type AddPlayersRequest struct {
	Players []string `json:"players"`
}

// GroupHandler serves coach rosters.
type GroupHandler struct {
	groups GroupService
	logger *slog.Logger
}

func NewGroupHandler(groups GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

// HandleList lists groups. ?coach=<user id> keeps only that coach's groups.
//
// HTTP: GET /groups/
func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	groups, err := h.groups.List(r.Context(), r.URL.Query().Get("coach"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// HandleCreate creates a group.
//
// HTTP: POST /groups/
// REQUEST BODY: {"name": "U12", "coach_id": "...", "players": ["...", "..."]}
func (h *GroupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.GroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.groups.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	g, err := h.groups.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleUpdate replaces name, coach and the whole member set.
//
// HTTP: PUT /groups/{id}/
func (h *GroupHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.GroupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.groups.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddPlayers adds members to a group.
//
// HTTP: POST /groups/{id}/players/
// REQUEST BODY: {"players": ["...", "..."]}
func (h *GroupHandler) HandleAddPlayers(w http.ResponseWriter, r *http.Request) {
	var req AddPlayersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.groups.AddPlayers(r.Context(), r.PathValue("id"), req.Players)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleRemovePlayer drops one member.
//
// HTTP: DELETE /groups/{id}/players/{playerID}/
func (h *GroupHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	g, err := h.groups.RemovePlayer(r.Context(), r.PathValue("id"), r.PathValue("playerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
