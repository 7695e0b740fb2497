package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

const defaultCourseColor = "from-cyan-500 to-blue-500"

type CourseHandler struct {
	courseStore *store.CourseStore
	userStore   *store.UserStore
	notifier    *Notifier
	logger      *slog.Logger
}

func NewCourseHandler(cs *store.CourseStore, us *store.UserStore, n *Notifier, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courseStore: cs, userStore: us, notifier: n, logger: logger}
}

type courseRequest struct {
	Title            string `json:"title" validate:"notblank,max=200"`
	Description      string `json:"description" validate:"max=2000"`
	Color            string `json:"color" validate:"max=100"`
	EnrolledStudents int    `json:"enrolled_students" validate:"min=0"`
}

func parseCourseRequest(w http.ResponseWriter, r *http.Request) (*courseRequest, bool) {
	var req courseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Color = strings.TrimSpace(req.Color); req.Color == "" {
		req.Color = defaultCourseColor
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return nil, false
	}
	return &req, true
}

// List returns every course. Teachers can pass mine=true for the courses
// they are assigned to.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		courses []model.Course
		err     error
	)
	if r.URL.Query().Get("mine") == "true" && auth.HasRole(r.Context(), model.RoleTeacher) {
		courses, err = h.courseStore.ListForTeacher(auth.UserID(r.Context()))
	} else {
		courses, err = h.courseStore.List()
	}
	if err != nil {
		h.logger.Error("list courses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, ok := h.loadCourse(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := parseCourseRequest(w, r)
	if !ok {
		return
	}

	course, err := h.courseStore.Create(req.Title, req.Description, req.Color, req.EnrolledStudents)
	if err != nil {
		h.logger.Error("create course", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create course")
		return
	}

	h.notifier.Changed(r, websocket.EntityCourse, "created", course.ID, course.Title)
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadCourse(w, r)
	if !ok {
		return
	}
	req, ok := parseCourseRequest(w, r)
	if !ok {
		return
	}

	course, err := h.courseStore.Update(existing.ID, req.Title, req.Description, req.Color, req.EnrolledStudents)
	if err != nil {
		h.logger.Error("update course", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update course")
		return
	}

	h.notifier.Changed(r, websocket.EntityCourse, "updated", course.ID, course.Title)
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadCourse(w, r)
	if !ok {
		return
	}

	if err := h.courseStore.Delete(existing.ID); err != nil {
		h.logger.Error("delete course", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete course")
		return
	}

	h.notifier.Changed(r, websocket.EntityCourse, "deleted", existing.ID, existing.Title)
	w.WriteHeader(http.StatusNoContent)
}

type sectionRequest struct {
	Name string `json:"name" validate:"notblank,max=32"`
}

func (h *CourseHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	course, ok := h.loadCourse(w, r)
	if !ok {
		return
	}

	var req sectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.ToUpper(strings.TrimSpace(req.Name))
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	name := req.Name

	exists, err := h.courseStore.SectionNameExists(name)
	if err != nil {
		h.logger.Error("check section name", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create section")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, fmt.Sprintf("section %s already exists", name))
		return
	}

	section, err := h.courseStore.CreateSection(course.ID, name)
	if err != nil {
		h.logger.Error("create section", "course_id", course.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create section")
		return
	}

	h.notifier.Changed(r, websocket.EntitySection, "created", section.ID, course.Title+" "+section.Name)
	writeJSON(w, http.StatusCreated, section)
}

func (h *CourseHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	section, err := h.courseStore.GetSection(id)
	if err != nil {
		h.logger.Error("get section", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get section")
		return
	}
	if section == nil {
		writeError(w, http.StatusNotFound, "section not found")
		return
	}

	if err := h.courseStore.DeleteSection(id); err != nil {
		h.logger.Error("delete section", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete section")
		return
	}

	h.notifier.Changed(r, websocket.EntitySection, "deleted", id, section.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) AssignTeacher(w http.ResponseWriter, r *http.Request) {
	course, teacher, ok := h.loadAssignment(w, r)
	if !ok {
		return
	}

	if err := h.courseStore.AssignTeacher(course.ID, teacher.ID); err != nil {
		h.logger.Error("assign teacher", "course_id", course.ID, "user_id", teacher.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign teacher")
		return
	}

	updated, err := h.courseStore.GetByID(course.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get course")
		return
	}

	h.notifier.Changed(r, websocket.EntityCourse, "teacher_assigned", course.ID, teacher.Name+" to "+course.Title)
	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) UnassignTeacher(w http.ResponseWriter, r *http.Request) {
	course, teacher, ok := h.loadAssignment(w, r)
	if !ok {
		return
	}

	if err := h.courseStore.UnassignTeacher(course.ID, teacher.ID); err != nil {
		h.logger.Error("unassign teacher", "course_id", course.ID, "user_id", teacher.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unassign teacher")
		return
	}

	h.notifier.Changed(r, websocket.EntityCourse, "teacher_unassigned", course.ID, teacher.Name+" from "+course.Title)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) loadCourse(w http.ResponseWriter, r *http.Request) (*model.Course, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	course, err := h.courseStore.GetByID(id)
	if err != nil {
		h.logger.Error("get course", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get course")
		return nil, false
	}
	if course == nil {
		writeError(w, http.StatusNotFound, "course not found")
		return nil, false
	}
	return course, true
}

func (h *CourseHandler) loadAssignment(w http.ResponseWriter, r *http.Request) (*model.Course, *model.User, bool) {
	course, ok := h.loadCourse(w, r)
	if !ok {
		return nil, nil, false
	}

	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return nil, nil, false
	}
	user, err := h.userStore.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return nil, nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "teacher not found")
		return nil, nil, false
	}
	if user.Role != model.RoleTeacher {
		writeError(w, http.StatusBadRequest, "user is not a teacher")
		return nil, nil, false
	}
	return course, user, true
}
