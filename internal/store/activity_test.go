package store

import "testing"

func TestActivityRecent(t *testing.T) {
	s := NewActivityStore(openTestDB(t))

	for _, title := range []string{"A", "B", "C"} {
		if err := s.Record("admin", "created", "course", 1, title); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Summary != "C" || got[1].Summary != "B" {
		t.Errorf("order = %q, %q, want newest first", got[0].Summary, got[1].Summary)
	}
	if got[0].Actor != "admin" || got[0].Entity != "course" {
		t.Errorf("entry = %+v", got[0])
	}
}
