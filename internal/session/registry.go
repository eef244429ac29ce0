// Package session owns the session table: connection id to user profile.
// Every other component refers to a session by its connection id only.
package session

import (
	"sync"

	"github.com/samber/lo"

	"roomcast/pkg/types"
)

// Registry maps connection ids to user profiles. List preserves
// registration order because the presence broadcast order is the
// registration order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*types.User
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*types.User)}
}

// Register binds a display name to a connection id. The name is taken
// as-is: duplicates and empty strings are allowed. Registering the same
// connection again replaces the profile without changing its position.
func (r *Registry) Register(connID, username string) *types.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := &types.User{ID: connID, Username: username}
	if _, exists := r.sessions[connID]; !exists {
		r.order = append(r.order, connID)
	}
	r.sessions[connID] = user
	return user
}

// Remove destroys the session. Removing an unknown id is a no-op.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; !exists {
		return
	}
	delete(r.sessions, connID)
	r.order = lo.Without(r.order, connID)
}

func (r *Registry) Get(connID string) (*types.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.sessions[connID]
	return user, ok
}

// List returns all sessions in registration order.
func (r *Registry) List() []*types.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(connID string, _ int) *types.User {
		return r.sessions[connID]
	})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
