package store

import (
	"testing"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

func setupSessionTestDB(t *testing.T, ttl time.Duration) (*SessionStore, *model.User) {
	t.Helper()
	db := openTestDB(t)
	u, err := NewUserStore(db).Upsert("alice@example.com", "alice", model.RoleStudent)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewSessionStore(db, ttl), u
}

func TestSessionCreate(t *testing.T) {
	ss, u := setupSessionTestDB(t, time.Hour)

	sess, err := ss.Create(u.ID, model.RoleStudent)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 36 {
		t.Errorf("token length = %d, want 36", len(sess.Token))
	}
	if sess.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", sess.UserID, u.ID)
	}
	if sess.Role != model.RoleStudent {
		t.Errorf("role = %q, want student", sess.Role)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.ID != sess.ID {
		t.Errorf("got %+v, want session %d", got, sess.ID)
	}
}

func TestSessionExpired(t *testing.T) {
	ss, u := setupSessionTestDB(t, -time.Minute)

	sess, err := ss.Create(u.ID, model.RoleStudent)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Errorf("expired session returned: %+v", got)
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestSessionDelete(t *testing.T) {
	ss, u := setupSessionTestDB(t, time.Hour)

	sess, err := ss.Create(u.ID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := ss.Delete(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("session still valid after delete")
	}
}
