package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/service"
)

// ProfileService is the coach and player CRUD the handlers call.
type ProfileService interface {
	ListCoaches(ctx context.Context, limit, offset int) ([]model.CoachProfile, error)
	GetCoach(ctx context.Context, id string) (*model.CoachProfile, error)
	CreateCoach(ctx context.Context, in service.CoachInput) (*model.CoachProfile, error)
	UpdateCoach(ctx context.Context, id string, in service.CoachInput) (*model.CoachProfile, error)
	DeleteCoach(ctx context.Context, id string) error

	ListPlayers(ctx context.Context, group string, limit, offset int) ([]model.PlayerProfile, error)
	GetPlayer(ctx context.Context, id string) (*model.PlayerProfile, error)
	CreatePlayer(ctx context.Context, in service.PlayerInput) (*model.PlayerProfile, error)
	UpdatePlayer(ctx context.Context, id string, in service.PlayerInput) (*model.PlayerProfile, error)
	DeletePlayer(ctx context.Context, id string) error
}

// ProfileHandler exposes coach and player profiles as REST resources.
//
// ROUTES:
//
//	GET    /coaches/        list          POST /coaches/        create
//	GET    /coaches/{id}/   read          PUT  /coaches/{id}/   replace
//	DELETE /coaches/{id}/   delete
//
// and the same five under /players/, where the list accepts ?group=.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// =========================================================================
// COACHES
// =========================================================================

func (h *ProfileHandler) HandleListCoaches(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	coaches, err := h.profiles.ListCoaches(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coaches)
}

func (h *ProfileHandler) HandleGetCoach(w http.ResponseWriter, r *http.Request) {
	coach, err := h.profiles.GetCoach(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coach)
}

func (h *ProfileHandler) HandleCreateCoach(w http.ResponseWriter, r *http.Request) {
	var in service.CoachInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	coach, err := h.profiles.CreateCoach(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, coach)
}

func (h *ProfileHandler) HandleUpdateCoach(w http.ResponseWriter, r *http.Request) {
	var in service.CoachInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	coach, err := h.profiles.UpdateCoach(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coach)
}

func (h *ProfileHandler) HandleDeleteCoach(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.DeleteCoach(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =========================================================================
// PLAYERS
// =========================================================================

// HandleListPlayers lists players. ?group=U12 keeps only that group.
func (h *ProfileHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	players, err := h.profiles.ListPlayers(r.Context(), r.URL.Query().Get("group"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *ProfileHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := h.profiles.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *ProfileHandler) HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var in service.PlayerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	player, err := h.profiles.CreatePlayer(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *ProfileHandler) HandleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	var in service.PlayerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	player, err := h.profiles.UpdatePlayer(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *ProfileHandler) HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.DeletePlayer(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
