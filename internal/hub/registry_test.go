package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	conn := &fakeConn{id: "conn-1"}
	req.NoError(r.Register(conn))
	req.Equal(1, r.Len())

	got, ok := r.Get("conn-1")
	req.True(ok)
	req.Same(conn, got)

	_, ok = r.Get("conn-2")
	req.False(ok)
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Register(nil), ErrNilConnection)
}

func TestRegistry_UnregisterStaleConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	old := &fakeConn{id: "conn-1"}
	req.NoError(r.Register(old))

	// A replacement under the same id evicts the old connection.
	replacement := &fakeConn{id: "conn-1"}
	req.NoError(r.Register(replacement))

	// The stale connection's teardown must not remove the replacement.
	r.Unregister(old)
	got, ok := r.Get("conn-1")
	req.True(ok)
	req.Same(replacement, got)

	r.Unregister(replacement)
	req.Zero(r.Len())

	// Safe to call twice, and with nil.
	r.Unregister(replacement)
	r.Unregister(nil)
}

func TestRegistry_All(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	a := &fakeConn{id: "conn-a"}
	b := &fakeConn{id: "conn-b"}
	req.NoError(r.Register(a))
	req.NoError(r.Register(b))

	all := r.All()
	req.Len(all, 2)
}
