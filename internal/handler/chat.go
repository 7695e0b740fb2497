package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

const (
	maxChatMessageLen = 1000
	defaultChatLimit  = 100
)

// ChatHandler serves the class chat. Messages are plain REST; the websocket
// only tells open dashboards to refetch.
type ChatHandler struct {
	chatStore *store.ChatStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewChatHandler(cs *store.ChatStore, hub *websocket.Hub, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chatStore: cs, hub: hub, logger: logger}
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultChatLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, defaultChatLimit)
	}

	messages, err := h.chatStore.List(limit)
	if err != nil {
		h.logger.Error("list chat messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

type chatRequest struct {
	Message string `json:"message" validate:"notblank,max=1000"`
}

func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	msg, err := h.chatStore.Post(auth.Actor(r.Context()), req.Message)
	if err != nil {
		h.logger.Error("post chat message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to post message")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityChat, "created", msg.ID, nil))
	}
	writeJSON(w, http.StatusCreated, msg)
}
