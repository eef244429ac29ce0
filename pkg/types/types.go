package types

import "time"

// User is a connected client's identity binding: the server-assigned
// connection id plus a self-asserted display name. Display names are not
// checked for uniqueness or format.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message is a chat message. After creation only ReadBy and Reactions
// mutate; id, sender, body, room and timestamp are immutable. Room messages
// live in the store's per-room log, private messages are delivered and
// forgotten.
type Message struct {
	ID        int64               `json:"id"`
	Sender    string              `json:"sender"`
	Recipient string              `json:"recipient,omitempty"`
	Body      string              `json:"message"`
	FileURL   string              `json:"fileUrl,omitempty"`
	Room      string              `json:"room,omitempty"`
	Private   bool                `json:"private,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	ReadBy    map[string]bool     `json:"readBy,omitempty"`
	Reactions map[string][]string `json:"reactions,omitempty"`
}

// Clone returns a copy that is safe to hand outside the store while the
// original keeps mutating under the store lock.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.ReadBy != nil {
		c.ReadBy = make(map[string]bool, len(m.ReadBy))
		for user, read := range m.ReadBy {
			c.ReadBy[user] = read
		}
	}
	if m.Reactions != nil {
		c.Reactions = make(map[string][]string, len(m.Reactions))
		for symbol, users := range m.Reactions {
			c.Reactions[symbol] = append([]string(nil), users...)
		}
	}
	return &c
}
