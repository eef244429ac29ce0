// Package store holds the per-room append-only message logs and applies
// post-creation annotations to them.
package store

import (
	"sync"
	"time"

	"roomcast/pkg/types"
)

// Store keeps one ordered log per room. Logs are unbounded for the process
// lifetime and messages are never deleted. Only ReadBy and Reactions mutate
// after creation, always under the store lock, so every message handed out
// is a copy.
type Store struct {
	mu     sync.RWMutex
	logs   map[string][]*types.Message
	lastID map[string]int64
	now    func() time.Time
}

func New() *Store {
	return &Store{
		logs:   make(map[string][]*types.Message),
		lastID: make(map[string]int64),
		now:    time.Now,
	}
}

// NewWithClock is for tests that need deterministic message ids.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Append creates a message and adds it to the room's log. Ids are wall-clock
// milliseconds bumped past the previous id, so they stay unique and
// time-ordered within a room even when two messages land in the same
// millisecond. Appending to a room the store has not seen creates its log.
func (s *Store) Append(room, sender, body, fileURL string) *types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	id := ts.UnixMilli()
	if last := s.lastID[room]; id <= last {
		id = last + 1
	}
	s.lastID[room] = id

	msg := &types.Message{
		ID:        id,
		Sender:    sender,
		Body:      body,
		FileURL:   fileURL,
		Room:      room,
		Timestamp: ts,
		ReadBy:    map[string]bool{sender: true},
		Reactions: make(map[string][]string),
	}
	s.logs[room] = append(s.logs[room], msg)
	return msg.Clone()
}

// Recent returns the trailing n messages of the room, oldest first.
func (s *Store) Recent(room string, n int) []*types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[room]
	if n >= 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	return cloneAll(log)
}

// Page returns the page-th chunk of size messages, page 1 first. hasMore
// reports whether anything follows the requested page. Unknown rooms read as
// empty logs.
func (s *Store) Page(room string, page, size int) ([]*types.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[room]
	if page < 1 || size <= 0 {
		return []*types.Message{}, false
	}

	hasMore := page*size < len(log)
	start := (page - 1) * size
	end := page * size
	if start > len(log) {
		start = len(log)
	}
	if end > len(log) {
		end = len(log)
	}
	return cloneAll(log[start:end]), hasMore
}

// Count returns the room's log length.
func (s *Store) Count(room string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs[room])
}

func cloneAll(msgs []*types.Message) []*types.Message {
	out := make([]*types.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
