package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, role model.Role) *Client {
	return &Client{
		hub:  hub,
		role: role,
		send: make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got, true
	case <-time.After(50 * time.Millisecond):
		return Message{}, false
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, model.RoleStudent)
	c2 := mockClient(hub, model.RoleTeacher)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, model.RoleStudent)
	c2 := mockClient(hub, model.RoleAdmin)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Broadcast(NewMessage(EntityEvent, "created", 42, map[string]any{"date": "2024-03-16"}))

	for _, c := range []*Client{c1, c2} {
		got, ok := receive(t, c)
		if !ok {
			t.Fatal("timeout waiting for message")
		}
		if got.Type != "calendar_event_created" {
			t.Errorf("type = %q, want calendar_event_created", got.Type)
		}
		if got.ID != 42 {
			t.Errorf("id = %d, want 42", got.ID)
		}
		if got.Extra["date"] != "2024-03-16" {
			t.Errorf("extra = %v", got.Extra)
		}
	}
}

func TestBroadcastTo(t *testing.T) {
	hub := NewHub(slog.Default())

	student := mockClient(hub, model.RoleStudent)
	teacher := mockClient(hub, model.RoleTeacher)
	admin := mockClient(hub, model.RoleAdmin)
	for _, c := range []*Client{student, teacher, admin} {
		hub.Register(c)
		defer hub.Unregister(c)
	}

	hub.BroadcastTo(NewMessage(EntityUser, "deleted", 3, nil), model.RoleAdmin, model.RoleTeacher)

	if _, ok := receive(t, student); ok {
		t.Error("student should not receive admin notification")
	}
	for _, c := range []*Client{teacher, admin} {
		if _, ok := receive(t, c); !ok {
			t.Errorf("%s did not receive notification", c.role)
		}
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Broadcast(NewMessage(EntityChat, "created", 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, model.RoleStudent)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", int64(i), nil))
	}

	// Dropped, not blocked.
	hub.Broadcast(NewMessage("test", "dropped", 999, nil))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntityMaterial, "deleted", 5, nil)
	if msg.Type != "material_deleted" {
		t.Errorf("type = %q, want material_deleted", msg.Type)
	}
	if msg.Entity != EntityMaterial || msg.Action != "deleted" || msg.ID != 5 {
		t.Errorf("message = %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, model.RoleStudent)
			hub.Register(c)
			hub.BroadcastTo(NewMessage("test", "concurrent", 0, nil), model.RoleStudent)
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
