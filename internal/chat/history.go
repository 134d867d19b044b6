package chat

import (
	"sync"

	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
)

// DefaultHistoryCap is how many exchanges are retained per user.
const DefaultHistoryCap = 20

// History keeps a capped per-user log of completed exchanges. Logs are
// created lazily on first append and evict oldest-first once full.
type History struct {
	mu     sync.Mutex
	cap    int
	byUser map[string][]llm.Exchange
}

// NewHistory creates a history store with the given per-user cap.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{
		cap:    capacity,
		byUser: make(map[string][]llm.Exchange),
	}
}

// Append records a completed exchange for the user, evicting the oldest
// entry if the log is at capacity.
func (h *History) Append(userID string, exchange llm.Exchange) {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := append(h.byUser[userID], exchange)
	if len(log) > h.cap {
		log = log[len(log)-h.cap:]
	}
	h.byUser[userID] = log
}

// Get returns a copy of the user's most recent exchanges, oldest first. A
// non-positive limit returns the whole log. Unknown users get an empty
// slice.
func (h *History) Get(userID string, limit int) []llm.Exchange {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.byUser[userID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]llm.Exchange, len(log))
	copy(out, log)
	return out
}

// Len returns how many exchanges the user has stored.
func (h *History) Len(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID])
}

// Users returns how many users currently have history.
func (h *History) Users() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser)
}

// Clear drops the user's history.
func (h *History) Clear(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.byUser, userID)
}
