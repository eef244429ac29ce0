package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomcast/pkg/types"
)

func TestHub_Lifecycle(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	req.ErrorIs(h.Stop(), ErrHubNotRunning)

	req.NoError(h.Start(context.Background()))
	req.ErrorIs(h.Start(context.Background()), ErrHubAlreadyRunning)

	req.NoError(h.Stop())
	req.ErrorIs(h.Stop(), ErrHubNotRunning)
}

func TestHub_RejectsWhenStopped(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	conn := &fakeConn{id: "conn-1"}
	req.ErrorIs(h.Enqueue(conn, types.Inbound{Type: types.EventJoin}), ErrHubNotRunning)
	req.ErrorIs(h.ConnectionOpened(conn), ErrHubNotRunning)
	req.ErrorIs(h.ConnectionClosed("conn-1"), ErrHubNotRunning)
}

func TestHub_EnqueueNilConnection(t *testing.T) {
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	require.ErrorIs(t, h.Enqueue(nil, types.Inbound{Type: types.EventJoin}), ErrNilConnection)
}

func TestHub_DispatchesEnqueuedEvents(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	req.NoError(h.Start(context.Background()))
	defer h.Stop()

	conn := f.connect(t, "conn-alice")
	req.NoError(h.Enqueue(conn, frame(t, types.EventJoin, types.JoinPayload{Username: "alice"})))

	req.Eventually(func() bool {
		return f.sessions.Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHub_DisconnectThroughLoop(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	req.NoError(h.Start(context.Background()))
	defer h.Stop()

	conn := f.connect(t, "conn-alice")
	req.NoError(h.ConnectionOpened(conn))
	req.NoError(h.Enqueue(conn, frame(t, types.EventJoin, types.JoinPayload{Username: "alice"})))
	req.Eventually(func() bool { return f.sessions.Len() == 1 }, time.Second, 5*time.Millisecond)

	req.NoError(h.ConnectionClosed("conn-alice"))
	req.Eventually(func() bool { return f.sessions.Len() == 0 }, time.Second, 5*time.Millisecond)
	req.Empty(f.rooms.MembersOf("general"))
}

func TestHub_EnqueueFullChannel(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 1, nil)

	// Mark running without draining so the buffer stays full.
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	conn := &fakeConn{id: "conn-1"}
	req.NoError(h.Enqueue(conn, types.Inbound{Type: types.EventTyping}))
	req.ErrorIs(h.Enqueue(conn, types.Inbound{Type: types.EventTyping}), ErrEventChannelFull)
}

func TestHub_StopUnblocksRunLoop(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t)
	h := NewHub(f.dispatcher, 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req.NoError(h.Start(ctx))
	req.NoError(h.Stop())

	// The loop is gone, so the hub refuses new work.
	conn := &fakeConn{id: "conn-1"}
	req.ErrorIs(h.Enqueue(conn, types.Inbound{Type: types.EventJoin}), ErrHubNotRunning)
}
