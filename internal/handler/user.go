package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/club-roster/internal/model"
)

// IdentityService is the account administration the admin endpoints call.
type IdentityService interface {
	ChangeRole(ctx context.Context, userID string, role model.Role) (*model.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// ChangeRoleRequest is the body of PUT /users/{id}/role/.
type ChangeRoleRequest struct {
	Role model.Role `json:"role"`
}

// UserHandler serves admin-only account management. The routes are wrapped
// in auth.RequireRole(model.RoleAdmin), so the handlers never check roles.
type UserHandler struct {
	identity IdentityService
	auth     AuthService
	logger   *slog.Logger
}

func NewUserHandler(identity IdentityService, authSvc AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{identity: identity, auth: authSvc, logger: logger}
}

// HandleChangeRole switches a user's role. The profile of the old role is
// removed and one for the new role created.
//
// HTTP: PUT /users/{id}/role/
// RESPONSE: {"user": {...}, "coach_profile": {...}} or "player_profile"
func (h *UserHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.identity.ChangeRole(r.Context(), r.PathValue("id"), req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	// Me loads the profile that now belongs to the user.
	withProfile, err := h.auth.Me(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(withProfile))
}

// HandleDelete removes an account with its profile, token and coached groups.
//
// HTTP: DELETE /users/{id}/
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
