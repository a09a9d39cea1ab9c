package chat

import (
	"sync"

	"huddle/internal/models"
)

// History is the append-only message log. Ids come from a counter owned by
// the log, so they are strictly increasing even when several messages share
// a timestamp. With a positive limit the records live in a ring buffer and
// only the newest limit messages are kept.
type History struct {
	records   []models.Message
	lastSeq   int64
	lastIndex int
	limit     int

	mux sync.RWMutex
}

func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{
		limit:     limit,
		lastIndex: -1,
	}
}

// Append assigns the next id to msg, stores it and returns the stored copy.
func (h *History) Append(msg models.Message) models.Message {
	h.mux.Lock()
	defer h.mux.Unlock()

	h.lastSeq++
	msg.ID = h.lastSeq

	switch {
	case h.limit == 0 || len(h.records) < h.limit:
		h.records = append(h.records, msg)
		h.lastIndex = len(h.records) - 1
	default:
		i := (h.lastIndex + 1) % h.limit
		h.records[i] = msg
		h.lastIndex = i
	}

	return msg
}

// All returns every retained message in creation order.
func (h *History) All() []models.Message {
	return h.Last(0)
}

// Last returns the newest count messages in creation order. A count of zero
// or more than is retained returns everything.
func (h *History) Last(count int) []models.Message {
	h.mux.RLock()
	defer h.mux.RUnlock()

	n := len(h.records)
	if count <= 0 || count > n {
		count = n
	}

	result := make([]models.Message, count)
	if count == 0 {
		return result
	}

	// Head index (oldest record)
	head := 0
	if h.limit > 0 && n == h.limit {
		head = (h.lastIndex + 1) % n
	}

	startIdx := (head + n - count) % n
	if startIdx+count <= n {
		copy(result, h.records[startIdx:startIdx+count])
	} else {
		n1 := n - startIdx
		copy(result, h.records[startIdx:])
		copy(result[n1:], h.records[:count-n1])
	}

	return result
}

func (h *History) Len() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.records)
}
