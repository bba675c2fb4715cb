package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/sakif/club-roster/internal/model"
)

// contextKey is unexported so no other package can read or overwrite the
// caller stored by RequireAuth.
type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a token key to its user. The auth service
// implements it; tests pass a fake.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*model.User, error)
}

// RequireAuth rejects requests without a valid token key with 401 and puts
// the authenticated user into the request context.
//
// HEADER FORMAT:
//
//	Authorization: Token <key>    (what the web frontend sends)
//	Authorization: Bearer <key>   (accepted as well)
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := TokenFromRequest(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}

			user, err := authn.Authenticate(r.Context(), key)
			if err != nil || user == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole answers 403 unless the caller has one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if !slices.Contains(roles, user.Role) {
				writeAuthError(w, http.StatusForbidden, "forbidden", "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the caller set by RequireAuth, or (nil, false) on
// an anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// TokenFromRequest extracts the key from the Authorization header. The
// scheme is matched case-insensitively.
func TokenFromRequest(r *http.Request) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

// writeAuthError writes the same {"error","message"} body the handlers use.
// It lives here because handler imports auth, not the other way round.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
