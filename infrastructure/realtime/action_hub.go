package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"ytpm/domain/repository"
)

// Hub maintains per-user subscribers listening for action lifecycle events.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan repository.ActionFinishedEvent]struct{}
}

func NewActionHub() *Hub {
	return &Hub{users: make(map[string]map[chan repository.ActionFinishedEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated user (user_id set by middleware).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan repository.ActionFinishedEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: action_finished\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan repository.ActionFinishedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan repository.ActionFinishedEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan repository.ActionFinishedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastActionFinished delivers the event to the owning user's subscribers.
// Slow subscribers are skipped rather than blocking finalization.
func (h *Hub) BroadcastActionFinished(evt repository.ActionFinishedEvent) {
	h.mu.RLock()
	subs := h.users[evt.UserID]
	for ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
