package store

import "roomcast/pkg/types"

// MarkRead sets the read receipt for username on a message. Marking twice is
// a no-op. The returned message is a copy of the full updated state, meant
// for a room-wide broadcast rather than a diff.
func (s *Store) MarkRead(room string, id int64, username string) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.find(room, id)
	if err != nil {
		return nil, err
	}
	if msg.ReadBy == nil {
		msg.ReadBy = make(map[string]bool)
	}
	msg.ReadBy[username] = true
	return msg.Clone(), nil
}

// React appends username to the reaction's user sequence, creating the
// sequence on first use. The sequence is not deduplicated: reacting twice
// with the same symbol records the user twice.
func (s *Store) React(room string, id int64, reaction, username string) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.find(room, id)
	if err != nil {
		return nil, err
	}
	if msg.Reactions == nil {
		msg.Reactions = make(map[string][]string)
	}
	msg.Reactions[reaction] = append(msg.Reactions[reaction], username)
	return msg.Clone(), nil
}

func (s *Store) find(room string, id int64) (*types.Message, error) {
	for _, msg := range s.logs[room] {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, ErrMessageNotFound
}
