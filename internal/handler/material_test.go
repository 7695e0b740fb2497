package handler

import (
	"net/http"
	"testing"

	"github.com/dukerupert/elms/internal/model"
)

func newMaterialHandler(env *testEnv) *MaterialHandler {
	return NewMaterialHandler(env.materials, env.courses, env.notifier, env.clock, env.logger)
}

func TestMaterialListByCourse(t *testing.T) {
	env := newTestEnv(t)
	h := newMaterialHandler(env)

	rec := serve(h.List, newRequest(http.MethodGet, "/api/materials?course_id=2", nil, &asStudent))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[[]model.Material](t, rec)
	if len(got) != 2 {
		t.Fatalf("materials = %d, want 2", len(got))
	}
	if got[0].Title != "Linear Regression Introduction" {
		t.Errorf("first = %q, want newest upload first", got[0].Title)
	}

	if rec := serve(h.List, newRequest(http.MethodGet, "/api/materials?course_id=x", nil, &asStudent)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad course_id = %d, want 400", rec.Code)
	}
}

func TestMaterialCreateByAssignedTeacher(t *testing.T) {
	env := newTestEnv(t)
	h := newMaterialHandler(env)

	body := map[string]string{"title": "Hooks Cheatsheet", "type": "pdf", "size": "120 KB"}
	rec := serve(h.Create, newRequest(http.MethodPost, "/api/courses/1/materials", body, &asSarah, "id", "1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	m := decode[model.Material](t, rec)
	if m.URL != "#" {
		t.Errorf("url = %q, want placeholder", m.URL)
	}
	if got := m.UploadDate.Format("2006-01-02"); got != "2024-03-15" {
		t.Errorf("upload date = %s, want 2024-03-15", got)
	}
}

func TestMaterialCreateRequiresAssignment(t *testing.T) {
	env := newTestEnv(t)
	h := newMaterialHandler(env)

	body := map[string]string{"title": "Hooks Cheatsheet", "type": "pdf"}
	rec := serve(h.Create, newRequest(http.MethodPost, "/api/courses/1/materials", body, &asDavid, "id", "1"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("unassigned teacher = %d, want 403", rec.Code)
	}

	rec = serve(h.Create, newRequest(http.MethodPost, "/api/courses/1/materials", body, &asAdmin, "id", "1"))
	if rec.Code != http.StatusCreated {
		t.Errorf("admin = %d, want 201", rec.Code)
	}
}

func TestMaterialCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	h := newMaterialHandler(env)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"no title", map[string]string{"type": "pdf"}},
		{"bad type", map[string]string{"title": "x", "type": "exe"}},
		{"bad url", map[string]string{"title": "x", "type": "video", "url": "javascript:alert(1)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.Create, newRequest(http.MethodPost, "/api/courses/1/materials", tt.body, &asSarah, "id", "1"))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	rec := serve(h.Create, newRequest(http.MethodPost, "/api/courses/99/materials", map[string]string{"title": "x", "type": "pdf"}, &asAdmin, "id", "99"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing course = %d, want 404", rec.Code)
	}
}

func TestMaterialDelete(t *testing.T) {
	env := newTestEnv(t)
	h := newMaterialHandler(env)

	if rec := serve(h.Delete, newRequest(http.MethodDelete, "/api/materials/1", nil, &asDavid, "id", "1")); rec.Code != http.StatusForbidden {
		t.Errorf("unassigned teacher = %d, want 403", rec.Code)
	}
	if rec := serve(h.Delete, newRequest(http.MethodDelete, "/api/materials/1", nil, &asSarah, "id", "1")); rec.Code != http.StatusNoContent {
		t.Fatalf("assigned teacher = %d, want 204", rec.Code)
	}
	if rec := serve(h.Delete, newRequest(http.MethodDelete, "/api/materials/1", nil, &asSarah, "id", "1")); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}
