// Package archive mirrors room messages into SQLite for offline inspection.
// It is write-only from the coordinator's point of view: nothing is ever
// read back into the registries, so a restart still starts empty.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"roomcast/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER NOT NULL,
	room       TEXT    NOT NULL,
	sender     TEXT    NOT NULL,
	body       TEXT    NOT NULL,
	file_url   TEXT,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (room, id)
);
CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room, created_at);
`

// Archive owns the database handle and a single writer goroutine; SQLite
// performs best with exactly one writer.
type Archive struct {
	db      *sql.DB
	writeCh chan *types.Message
	done    chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
}

func Open(path string, log *slog.Logger) (*Archive, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}

	a := &Archive{
		db:      db,
		writeCh: make(chan *types.Message, 256),
		done:    make(chan struct{}),
		log:     log,
	}
	a.wg.Add(1)
	go a.writeLoop()
	return a, nil
}

// Record queues a message for archival. It never blocks the dispatcher:
// when the queue is full the message is dropped with a log line.
func (a *Archive) Record(msg *types.Message) {
	select {
	case a.writeCh <- msg:
	default:
		a.log.Warn("archive queue full, message dropped", "room", msg.Room, "id", msg.ID)
	}
}

func (a *Archive) writeLoop() {
	defer a.wg.Done()

	for {
		select {
		case msg := <-a.writeCh:
			if err := a.insert(msg); err != nil {
				a.log.Warn("archive write failed", "room", msg.Room, "id", msg.ID, "error", err)
			}
		case <-a.done:
			// Drain what is already queued before shutting down.
			for {
				select {
				case msg := <-a.writeCh:
					if err := a.insert(msg); err != nil {
						a.log.Warn("archive write failed", "room", msg.Room, "id", msg.ID, "error", err)
					}
				default:
					return
				}
			}
		}
	}
}

func (a *Archive) insert(msg *types.Message) error {
	_, err := a.db.Exec(
		`INSERT OR IGNORE INTO messages (id, room, sender, body, file_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.Room, msg.Sender, msg.Body, msg.FileURL, msg.Timestamp,
	)
	return err
}

// Count reports how many messages a room has archived.
func (a *Archive) Count(ctx context.Context, room string) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE room = ?`, room).Scan(&n)
	return n, err
}

// HealthCheck validates database connectivity.
func (a *Archive) HealthCheck(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close stops the writer after draining the queue and closes the database.
// Safe to call more than once.
func (a *Archive) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.done)
	a.wg.Wait()
	return a.db.Close()
}
