package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/recurrence"
	"github.com/dukerupert/elms/internal/store"
)

const (
	chatbotGreeting = "Hello! I'm your AI learning assistant. How can I help you today?"
	chatbotFallback = "I understand your question. As an AI assistant, I can help you with course materials, assignments, and general learning questions. What specific topic would you like to explore?"
)

var deadlineKeywords = []string{"deadline", "due", "assignment", "exam", "test", "quiz"}

// ChatbotHandler answers the student assistant panel with canned replies.
// Questions about deadlines get the real upcoming list.
type ChatbotHandler struct {
	eventStore  *store.EventStore
	clock       Clock
	horizonDays int
	logger      *slog.Logger
}

func NewChatbotHandler(es *store.EventStore, clock Clock, horizonDays int, logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{eventStore: es, clock: clock, horizonDays: horizonDays, logger: logger}
}

type chatbotResponse struct {
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *ChatbotHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	question := strings.ToLower(strings.TrimSpace(req.Message))
	if question == "" {
		writeJSON(w, http.StatusOK, chatbotResponse{Reply: chatbotGreeting, Timestamp: h.clock.now()})
		return
	}

	reply := chatbotFallback
	if mentionsAny(question, deadlineKeywords) {
		var err error
		reply, err = h.deadlineReply()
		if err != nil {
			h.logger.Error("chatbot deadlines", "error", err)
			reply = chatbotFallback
		}
	}

	writeJSON(w, http.StatusOK, chatbotResponse{Reply: reply, Timestamp: h.clock.now()})
}

func (h *ChatbotHandler) deadlineReply() (string, error) {
	today := h.clock.Today()
	end := today.AddDate(0, 0, h.horizonDays+1)
	stored, err := h.eventStore.ListByDateRange(today, end)
	if err != nil {
		return "", err
	}
	due := calendar.Upcoming(recurrence.ExpandEvents(stored, today, end), today, h.horizonDays)
	if len(due) == 0 {
		return fmt.Sprintf("You have no assignments or exams due in the next %d days.", h.horizonDays), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d deadline(s) coming up:", len(due))
	for _, e := range due {
		fmt.Fprintf(&b, " %s (%s, %s);", e.Title, e.Date.Format("1/2/2006"), calendar.Countdown(today, e.Date))
	}
	return strings.TrimSuffix(b.String(), ";") + ".", nil
}

func mentionsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
