package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

// Notifier records a mutation in the activity log and tells open
// dashboards to refetch.
type Notifier struct {
	hub      *websocket.Hub
	activity *store.ActivityStore
	logger   *slog.Logger
}

func NewNotifier(hub *websocket.Hub, activity *store.ActivityStore, logger *slog.Logger) *Notifier {
	return &Notifier{hub: hub, activity: activity, logger: logger}
}

// Changed is called after a successful write. Failures to record activity
// are logged and do not fail the request.
func (n *Notifier) Changed(r *http.Request, entity, action string, id int64, summary string) {
	if n == nil {
		return
	}
	actor := auth.Actor(r.Context())

	if n.activity != nil {
		if err := n.activity.Record(actor, action, entity, id, summary); err != nil {
			n.logger.Error("record activity", "entity", entity, "action", action, "error", err)
		}
	}
	if n.hub != nil {
		msg := websocket.NewMessage(entity, action, id, nil)
		msg.Actor = actor
		n.hub.Broadcast(msg)
		n.hub.BroadcastTo(websocket.NewMessage("activity", "created", 0, nil), model.RoleTeacher, model.RoleAdmin)
	}
}
