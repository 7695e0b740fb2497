package store

import (
	"testing"

	"github.com/dukerupert/elms/internal/model"
)

func TestUserUpsert(t *testing.T) {
	s := NewUserStore(openTestDB(t))

	u, err := s.Upsert("alice@example.com", "alice", model.RoleStudent)
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	if u.Name != "alice" || u.Role != model.RoleStudent {
		t.Errorf("user = %q/%q, want alice/student", u.Name, u.Role)
	}

	again, err := s.Upsert("alice@example.com", "alice", model.RoleTeacher)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("id = %d, want %d", again.ID, u.ID)
	}
	if again.Role != model.RoleTeacher {
		t.Errorf("role = %q, want teacher", again.Role)
	}
}

func TestUserGetNotFound(t *testing.T) {
	s := NewUserStore(openTestDB(t))

	u, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}

	u, err = s.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %+v", u)
	}
}

func TestUserListByRole(t *testing.T) {
	s := NewUserStore(openSeededDB(t))

	teachers, err := s.ListByRole(model.RoleTeacher)
	if err != nil {
		t.Fatalf("list teachers: %v", err)
	}
	if len(teachers) != 6 {
		t.Fatalf("teachers = %d, want 6", len(teachers))
	}
	if teachers[0].Name != "Dr. Emily Davis" {
		t.Errorf("first teacher = %q, want ordered by name", teachers[0].Name)
	}

	counts := map[string]int{}
	for _, u := range teachers {
		counts[u.Email] = u.CourseCount
	}
	if counts["sarah.johnson@elms.edu"] != 2 {
		t.Errorf("sarah course count = %d, want 2", counts["sarah.johnson@elms.edu"])
	}

	students, err := s.ListByRole(model.RoleStudent)
	if err != nil {
		t.Fatalf("list students: %v", err)
	}
	if len(students) != 4 {
		t.Errorf("students = %d, want 4", len(students))
	}

	n, err := s.CountByRole(model.RoleAdmin)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if n != 0 {
		t.Errorf("admins = %d, want 0", n)
	}
}

func TestUserDelete(t *testing.T) {
	db := openSeededDB(t)
	s := NewUserStore(db)
	cs := NewCourseStore(db)

	if err := s.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	u, err := s.GetByID(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u != nil {
		t.Error("user still exists after delete")
	}

	c, err := cs.GetByID(1)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if len(c.Teachers) != 1 {
		t.Errorf("course 1 teachers = %d, want 1 after cascade", len(c.Teachers))
	}
}
