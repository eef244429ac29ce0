// Package direct builds private messages between two live sessions.
package direct

import (
	"time"

	"roomcast/internal/session"
	"roomcast/pkg/types"
)

// Router resolves private-message recipients against the session registry.
// Private messages never touch a room log: a client that reconnects has no
// private history.
type Router struct {
	sessions *session.Registry
	now      func() time.Time
}

func NewRouter(sessions *session.Registry) *Router {
	return &Router{sessions: sessions, now: time.Now}
}

// Send resolves the recipient by connection id and returns the constructed
// message. ErrRecipientNotFound means only the sender should be told; the
// message must then reach exactly the recipient's connection and the
// sender's own (echo).
func (r *Router) Send(sender *types.User, to, body string) (*types.Message, error) {
	recipient, ok := r.sessions.Get(to)
	if !ok {
		return nil, ErrRecipientNotFound
	}

	ts := r.now()
	return &types.Message{
		ID:        ts.UnixMilli(),
		Sender:    sender.Username,
		Recipient: recipient.Username,
		Body:      body,
		Private:   true,
		Timestamp: ts,
	}, nil
}
