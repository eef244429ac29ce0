// Package interfaces holds the contracts shared across component boundaries.
package interfaces

import "roomcast/pkg/types"

// Connection is the hub's delivery boundary. The websocket transport
// implements it; tests substitute fakes. WriteEvent must be safe for
// concurrent use.
type Connection interface {
	ID() string
	WriteEvent(ev types.Envelope) error
	Close() error
}
