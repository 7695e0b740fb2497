package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

type MaterialHandler struct {
	materialStore *store.MaterialStore
	courseStore   *store.CourseStore
	notifier      *Notifier
	clock         Clock
	logger        *slog.Logger
}

func NewMaterialHandler(ms *store.MaterialStore, cs *store.CourseStore, n *Notifier, clock Clock, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{materialStore: ms, courseStore: cs, notifier: n, clock: clock, logger: logger}
}

type materialRequest struct {
	Title       string             `json:"title" validate:"notblank,max=200"`
	Description string             `json:"description" validate:"max=2000"`
	Type        model.MaterialType `json:"type" validate:"oneof=pdf pptx docx video"`
	URL         string             `json:"url" validate:"max=2048"`
	Size        string             `json:"size" validate:"max=32"`
}

func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	var courseID *int64
	if s := r.URL.Query().Get("course_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid course_id")
			return
		}
		courseID = &id
	}

	materials, err := h.materialStore.List(courseID)
	if err != nil {
		h.logger.Error("list materials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list materials")
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

// Create adds a material to the course in the path. Teachers may only add
// to courses they are assigned to.
func (h *MaterialHandler) Create(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	course, err := h.courseStore.GetByID(courseID)
	if err != nil {
		h.logger.Error("get course", "id", courseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get course")
		return
	}
	if course == nil {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	if !h.canEdit(r, course) {
		writeError(w, http.StatusForbidden, "not assigned to this course")
		return
	}

	var req materialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Size = strings.TrimSpace(req.Size)
	req.URL = strings.TrimSpace(req.URL)
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if req.URL == "" {
		req.URL = "#"
	} else if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "url must be an http or https link")
		return
	}

	material, err := h.materialStore.Create(course.ID, req.Title, req.Description, req.Type, req.URL, req.Size, h.clock.Today())
	if err != nil {
		h.logger.Error("create material", "course_id", course.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create material")
		return
	}

	h.notifier.Changed(r, websocket.EntityMaterial, "created", material.ID, material.Title)
	writeJSON(w, http.StatusCreated, material)
}

func (h *MaterialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	material, err := h.materialStore.GetByID(id)
	if err != nil {
		h.logger.Error("get material", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get material")
		return
	}
	if material == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	course, err := h.courseStore.GetByID(material.CourseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get course")
		return
	}
	if course != nil && !h.canEdit(r, course) {
		writeError(w, http.StatusForbidden, "not assigned to this course")
		return
	}

	if err := h.materialStore.Delete(id); err != nil {
		h.logger.Error("delete material", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete material")
		return
	}

	h.notifier.Changed(r, websocket.EntityMaterial, "deleted", id, material.Title)
	w.WriteHeader(http.StatusNoContent)
}

func (h *MaterialHandler) canEdit(r *http.Request, course *model.Course) bool {
	if auth.IsAdmin(r.Context()) {
		return true
	}
	uid := auth.UserID(r.Context())
	for _, t := range course.Teachers {
		if t.ID == uid {
			return true
		}
	}
	return false
}
