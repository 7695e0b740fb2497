package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

// AdminHandler serves the people directory on the admin dashboard.
type AdminHandler struct {
	userStore *store.UserStore
	notifier  *Notifier
	logger    *slog.Logger
}

func NewAdminHandler(us *store.UserStore, n *Notifier, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{userStore: us, notifier: n, logger: logger}
}

func (h *AdminHandler) Teachers(w http.ResponseWriter, r *http.Request) {
	h.listRole(w, model.RoleTeacher)
}

func (h *AdminHandler) Students(w http.ResponseWriter, r *http.Request) {
	h.listRole(w, model.RoleStudent)
}

func (h *AdminHandler) listRole(w http.ResponseWriter, role model.Role) {
	users, err := h.userStore.ListByRole(role)
	if err != nil {
		h.logger.Error("list users", "role", role, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteTeacher removes a teacher account along with its course
// assignments and sessions.
func (h *AdminHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.userStore.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil || user.Role != model.RoleTeacher {
		writeError(w, http.StatusNotFound, "teacher not found")
		return
	}

	if err := h.userStore.Delete(id); err != nil {
		h.logger.Error("delete teacher", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete teacher")
		return
	}

	h.notifier.Changed(r, websocket.EntityUser, "deleted", id, user.Name)
	w.WriteHeader(http.StatusNoContent)
}
