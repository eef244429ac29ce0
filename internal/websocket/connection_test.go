package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"roomcast/pkg/types"
)

// wsPair upgrades one request and hands back both ends of a live websocket.
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server side never accepted")
	}
	return server, client
}

func TestConnection_WriteEvent(t *testing.T) {
	req := require.New(t)
	serverSide, clientSide := wsPair(t)

	conn := NewConnection("conn-1", serverSide, 8, time.Second)
	defer conn.Close()
	req.Equal("conn-1", conn.ID())

	req.NoError(conn.WriteEvent(types.Envelope{Type: types.EventSystemMessage, Payload: "hello"}))

	_ = clientSide.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := clientSide.ReadMessage()
	req.NoError(err)

	var env struct {
		Type    string `json:"type"`
		Payload string `json:"payload"`
	}
	req.NoError(json.Unmarshal(data, &env))
	req.Equal(types.EventSystemMessage, env.Type)
	req.Equal("hello", env.Payload)
}

func TestConnection_WriteAfterClose(t *testing.T) {
	req := require.New(t)
	serverSide, _ := wsPair(t)

	conn := NewConnection("conn-1", serverSide, 8, time.Second)
	req.NoError(conn.Close())
	req.ErrorIs(conn.WriteEvent(types.Envelope{Type: types.EventSystemMessage}), ErrConnectionClosed)

	// Close is idempotent.
	req.NoError(conn.Close())
}

func TestConnection_WritesStayOrdered(t *testing.T) {
	req := require.New(t)
	serverSide, clientSide := wsPair(t)

	conn := NewConnection("conn-1", serverSide, 32, time.Second)
	defer conn.Close()

	payloads := []string{"one", "two", "three", "four"}
	for _, p := range payloads {
		req.NoError(conn.WriteEvent(types.Envelope{Type: types.EventSystemMessage, Payload: p}))
	}

	for _, want := range payloads {
		_ = clientSide.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := clientSide.ReadMessage()
		req.NoError(err)

		var env struct {
			Payload string `json:"payload"`
		}
		req.NoError(json.Unmarshal(data, &env))
		req.Equal(want, env.Payload)
	}
}
