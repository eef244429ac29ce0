// Package room tracks membership and typing state for a fixed room set.
package room

import (
	"sync"

	"github.com/samber/lo"
)

// state is everything a room owns besides its message log: the member set
// and the typing table (connection id to display name).
type state struct {
	members map[string]struct{}
	typing  map[string]string
}

// Manager tracks room membership for a preconfigured room set. Rooms are
// never created or destroyed at runtime. A connection is a member of at most
// one room at a time.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*state
	names []string
}

func NewManager(names []string) *Manager {
	m := &Manager{
		rooms: make(map[string]*state, len(names)),
		names: append([]string(nil), names...),
	}
	for _, name := range names {
		m.rooms[name] = &state{
			members: make(map[string]struct{}),
			typing:  make(map[string]string),
		}
	}
	return m
}

// Rooms returns the configured room names in configuration order.
func (m *Manager) Rooms() []string {
	return append([]string(nil), m.names...)
}

func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.rooms[name]
	return ok
}

// Join moves the connection into the named room, leaving every other room
// first so membership stays exclusive.
func (m *Manager) Join(connID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.rooms[name]
	if !ok {
		return ErrUnknownRoom
	}
	for other, st := range m.rooms {
		if other != name {
			delete(st.members, connID)
		}
	}
	target.members[connID] = struct{}{}
	return nil
}

// LeaveAll removes the connection from every room and reports which rooms it
// actually occupied.
func (m *Manager) LeaveAll(connID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var left []string
	for _, name := range m.names {
		st := m.rooms[name]
		if _, ok := st.members[connID]; ok {
			delete(st.members, connID)
			left = append(left, name)
		}
	}
	return left
}

// MembersOf returns the connection ids currently in the room. Unknown rooms
// have no members.
func (m *Manager) MembersOf(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.rooms[name]
	if !ok {
		return nil
	}
	return lo.Keys(st.members)
}
