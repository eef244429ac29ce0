// Package websocket is the transport: it upgrades HTTP requests, wraps the
// raw connections, and pumps decoded frames into the hub.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"roomcast/pkg/types"
)

// Connection wraps a websocket with a single writer goroutine so concurrent
// broadcasts never interleave frames.
type Connection struct {
	id        string
	conn      *websocket.Conn
	writeCh   chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	writeWait time.Duration
}

func NewConnection(id string, conn *websocket.Conn, bufferSize int, writeWait time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:        id,
		conn:      conn,
		writeCh:   make(chan []byte, bufferSize),
		ctx:       ctx,
		cancel:    cancel,
		writeWait: writeWait,
	}
	go c.writeLoop()
	return c
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// WriteEvent queues an envelope for delivery. It fails once the connection
// is closed or when the write buffer stays full past the write wait.
func (c *Connection) WriteEvent(ev types.Envelope) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(c.writeWait):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
