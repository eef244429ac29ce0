package room

import "github.com/samber/lo"

// SetTyping records or clears the typing mark for a connection and returns
// the room's full typing-name list, even when it is empty, so callers always
// broadcast the current state. Marks never expire on their own: a client
// that goes silent stays marked until it sends isTyping=false or
// disconnects.
func (m *Manager) SetTyping(connID, name, username string, isTyping bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[name]
	if !ok {
		return nil, ErrUnknownRoom
	}
	if isTyping {
		st.typing[connID] = username
	} else {
		delete(st.typing, connID)
	}
	return lo.Values(st.typing), nil
}

// ClearTyping drops the connection's typing marks everywhere and returns the
// refreshed name list for each room that changed.
func (m *Manager) ClearTyping(connID string) map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := make(map[string][]string)
	for _, name := range m.names {
		st := m.rooms[name]
		if _, ok := st.typing[connID]; ok {
			delete(st.typing, connID)
			changed[name] = lo.Values(st.typing)
		}
	}
	return changed
}
