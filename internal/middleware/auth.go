package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "elms_session"

// RequireAuth validates the session cookie and populates AuthContext.
// Requests without a live session get 401.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not signed in")
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load session")
				return
			}
			if sess == nil {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load user")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "account removed")
				return
			}

			ac := auth.AuthContext{
				UserID:    user.ID,
				Name:      user.Name,
				Role:      sess.Role,
				SessionID: sess.ID,
				Token:     sess.Token,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole only lets through sessions acting in one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.HasRole(r.Context(), roles...) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)(next)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
