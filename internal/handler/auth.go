package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/club-roster/internal/auth"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/service"
)

// AuthService is what the auth endpoints need from the service layer.
// *service.AuthService implements it; tests pass a fake.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, user *model.User) error
	Me(ctx context.Context, user *model.User) (*service.CreatedUser, error)
}

// SignupService covers the three role-specific signup flows.
type SignupService interface {
	SignupAdmin(ctx context.Context, in service.AdminSignupInput) (string, error)
	SignupCoach(ctx context.Context, caller *model.User, in service.CoachSignupInput) (*service.CreatedUser, error)
	SignupPlayer(ctx context.Context, in service.PlayerSignupInput) (*model.PlayerProfile, error)
}

// UserResponse is a user together with its role profile. Only the profile
// matching the role is ever present.
type UserResponse struct {
	User          *model.User          `json:"user"`
	CoachProfile  *model.CoachProfile  `json:"coach_profile,omitempty"`
	PlayerProfile *model.PlayerProfile `json:"player_profile,omitempty"`
}

func newUserResponse(c *service.CreatedUser) UserResponse {
	return UserResponse{User: c.User, CoachProfile: c.Coach, PlayerProfile: c.Player}
}

// TokenResponse is the body of a successful admin signup.
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginRequest is the body of POST /login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler serves signup, login, logout and the current-user endpoint.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup        → open admin signup, answers with the first token
//   - HandleCoachSignup   → admin-only coach account creation
//   - HandlePlayerSignup  → open player signup, answers with the profile
//   - HandleLogin         → email + password → token
//   - HandleLogout        → revoke the caller's token
//   - HandleMe            → the caller and its profile
type AuthHandler struct {
	auth   AuthService
	signup SignupService
	logger *slog.Logger
}

func NewAuthHandler(authSvc AuthService, signup SignupService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, signup: signup, logger: logger}
}

// HandleSignup creates an admin account.
//
// HTTP: POST /signup/
// REQUEST BODY: {"username","email","password","role":"admin","phone","club","first_name","last_name"}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.AdminSignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.signup.SignupAdmin(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

// HandleCoachSignup creates a coach account with its profile.
//
// HTTP: POST /signup/coach/
// Auth: Required. The service answers 403 unless the caller is an admin.
func (h *AuthHandler) HandleCoachSignup(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	var in service.CoachSignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.signup.SignupCoach(r.Context(), caller, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Coach account created successfully"})
}

// HandlePlayerSignup creates a player account and returns the profile.
//
// HTTP: POST /players/signup/
func (h *AuthHandler) HandlePlayerSignup(w http.ResponseWriter, r *http.Request) {
	var in service.PlayerSignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.signup.SignupPlayer(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// HandleLogin exchanges credentials for the user's token.
//
// HTTP: POST /login/
// RESPONSE: {"token": "...", "user": {"id","email","role","username"}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLogout revokes the caller's token. The next login mints a new one.
//
// HTTP: POST /logout/
// Auth: Required
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandleMe returns the authenticated user and its profile.
//
// HTTP: GET /me/
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	me, err := h.auth.Me(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(me))
}
