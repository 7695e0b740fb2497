package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/middleware"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
)

// AuthHandler implements the mock sign-in: any email and non-empty password
// is accepted, and the caller picks the role. An admin PIN hash, when
// configured, is the one password that is checked.
type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	sessionTTL   time.Duration
	adminPINHash string
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, ttl time.Duration, adminPINHash string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		sessionTTL:   ttl,
		adminPINHash: adminPINHash,
		logger:       logger,
	}
}

// HashPIN returns the bcrypt hash stored as admin_pin_hash.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 {
		return "", fmt.Errorf("PIN must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(hash), nil
}

type loginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Role     model.Role `json:"role" validate:"oneof=student teacher admin"`
}

type sessionResponse struct {
	User     *model.User `json:"user"`
	Role     model.Role  `json:"role"`
	Redirect string      `json:"redirect"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = model.RoleStudent
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	email := req.Email
	if req.Role == model.RoleAdmin && h.adminPINHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(h.adminPINHash), []byte(req.Password)); err != nil {
			h.logger.Warn("admin PIN rejected", "email", email)
			writeError(w, http.StatusUnauthorized, "invalid admin PIN")
			return
		}
	}

	user, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	// Known users keep their directory role; the session carries the role
	// picked on the login form.
	if user == nil {
		user, err = h.userStore.Upsert(email, email[:strings.IndexByte(email, '@')], req.Role)
		if err != nil {
			h.logger.Error("login upsert", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to sign in")
			return
		}
	}

	sess, err := h.sessionStore.Create(user.ID, req.Role)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("signed in", "user_id", user.ID, "role", req.Role)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:     user,
		Role:     req.Role,
		Redirect: req.Role.DashboardPath(),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessionStore.Delete(ac.Token); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	user, err := h.userStore.GetByID(ac.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:     user,
		Role:     ac.Role,
		Redirect: ac.Role.DashboardPath(),
	})
}
