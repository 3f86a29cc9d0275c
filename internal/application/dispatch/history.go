package dispatch

import "sync"

// DefaultHistoryLimit is used when NewHistory gets a non-positive limit.
const DefaultHistoryLimit = 50

// History is a ResultObserver that keeps the most recent results in a ring.
type History struct {
	mu    sync.RWMutex
	ring  []Result
	next  int
	count int
}

// NewHistory creates a history holding up to limit results.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{ring: make([]Result, limit)}
}

// CommandCompleted implements ResultObserver.
func (h *History) CommandCompleted(result Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result.Command = result.Command.Copy()
	h.ring[h.next] = result
	h.next = (h.next + 1) % len(h.ring)
	if h.count < len(h.ring) {
		h.count++
	}
}

// Recent returns up to n results, newest first. n <= 0 returns everything
// held.
func (h *History) Recent(n int) []Result {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.count {
		n = h.count
	}
	out := make([]Result, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.ring)) % len(h.ring)
		out = append(out, h.ring[idx])
	}
	return out
}

// Len returns how many results are held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
