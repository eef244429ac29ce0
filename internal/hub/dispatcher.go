package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"roomcast/internal/direct"
	"roomcast/internal/metrics"
	"roomcast/internal/room"
	"roomcast/internal/session"
	"roomcast/internal/store"
	"roomcast/pkg/interfaces"
	"roomcast/pkg/types"
)

// Dispatcher applies the event routing table: resolve the session, invoke
// exactly one mutating component, then fan out the resulting broadcasts.
// Events from connections that never joined are dropped, and apart from an
// unknown private-message recipient no failure is ever reported back to the
// client. No event is fatal: a bad frame never disturbs other sessions.
type Dispatcher struct {
	sessions *session.Registry
	rooms    *room.Manager
	messages *store.Store
	private  *direct.Router
	conns    *Registry
	archive  interfaces.Recorder
	log      *slog.Logger

	defaultRoom   string
	historyWindow int
}

// Deps carries the dispatcher's collaborators. Archive may be nil.
type Deps struct {
	Sessions *session.Registry
	Rooms    *room.Manager
	Messages *store.Store
	Private  *direct.Router
	Conns    *Registry
	Archive  interfaces.Recorder
	Log      *slog.Logger

	DefaultRoom   string
	HistoryWindow int
}

func NewDispatcher(deps Deps) *Dispatcher {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		sessions:      deps.Sessions,
		rooms:         deps.Rooms,
		messages:      deps.Messages,
		private:       deps.Private,
		conns:         deps.Conns,
		archive:       deps.Archive,
		log:           log,
		defaultRoom:   deps.DefaultRoom,
		historyWindow: deps.HistoryWindow,
	}
}

// Handle routes one inbound frame. It is called from the hub's event loop,
// so every mutation across all connections is totally ordered.
func (d *Dispatcher) Handle(conn interfaces.Connection, frame types.Inbound) {
	metrics.EventsTotal.WithLabelValues(frame.Type).Inc()

	if frame.Type == types.EventJoin {
		d.handleJoin(conn, frame.Payload)
		return
	}

	user, ok := d.sessions.Get(conn.ID())
	if !ok {
		// Events before a join are dropped without acknowledgement.
		d.log.Debug("event from unauthenticated connection", "conn", conn.ID(), "type", frame.Type)
		return
	}

	switch frame.Type {
	case types.EventJoinRoom:
		d.handleJoinRoom(conn, user, frame.Payload)
	case types.EventSendMessage:
		d.handleSendMessage(user, frame.Payload)
	case types.EventMessageRead:
		d.handleMessageRead(user, frame.Payload)
	case types.EventMessageReaction:
		d.handleMessageReaction(user, frame.Payload)
	case types.EventPrivateMessage:
		d.handlePrivateMessage(conn, user, frame.Payload)
	case types.EventTyping:
		d.handleTyping(user, frame.Payload)
	default:
		d.log.Debug("unknown event type", "conn", conn.ID(), "type", frame.Type)
	}
}

// Disconnect tears down everything a vanished connection owned: room
// membership, typing marks, the session itself. The vacated rooms hear
// user_left and refreshed typing lists; everyone gets the new presence list.
func (d *Dispatcher) Disconnect(connID string) {
	user, ok := d.sessions.Get(connID)
	if !ok {
		return
	}

	for _, name := range d.rooms.LeaveAll(connID) {
		d.broadcastRoom(name, types.Envelope{
			Type:    types.EventUserLeft,
			Payload: types.UserEvent{Username: user.Username, ID: connID},
		})
	}
	for name, names := range d.rooms.ClearTyping(connID) {
		d.broadcastRoom(name, types.Envelope{Type: types.EventTypingUsers, Payload: names})
	}
	d.sessions.Remove(connID)
	d.broadcastAll(types.Envelope{Type: types.EventUserList, Payload: d.sessions.List()})
	d.log.Info("session ended", "conn", connID, "username", user.Username)
}

func (d *Dispatcher) handleJoin(conn interfaces.Connection, payload json.RawMessage) {
	var p types.JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed join payload", "conn", conn.ID(), "error", err)
		return
	}

	user := d.sessions.Register(conn.ID(), p.Username)
	if err := d.rooms.Join(conn.ID(), d.defaultRoom); err != nil {
		d.log.Error("default room missing", "room", d.defaultRoom, "error", err)
	}
	d.log.Info("session started", "conn", conn.ID(), "username", user.Username)

	d.deliver(conn, types.Envelope{
		Type:    types.EventSystemMessage,
		Payload: fmt.Sprintf("Welcome, %s! You are in the #%s room.", user.Username, d.defaultRoom),
	})
	d.broadcastRoomExcept(d.defaultRoom, conn.ID(), types.Envelope{
		Type:    types.EventUserJoined,
		Payload: types.UserEvent{Username: user.Username, ID: user.ID},
	})
	d.broadcastAll(types.Envelope{Type: types.EventUserList, Payload: d.sessions.List()})
	d.broadcastAll(types.Envelope{Type: types.EventRoomList, Payload: d.rooms.Rooms()})
}

func (d *Dispatcher) handleJoinRoom(conn interfaces.Connection, user *types.User, payload json.RawMessage) {
	var p types.JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed join_room payload", "conn", conn.ID(), "error", err)
		return
	}

	if err := d.rooms.Join(user.ID, p.Room); err != nil {
		d.log.Debug("join_room dropped", "room", p.Room, "username", user.Username, "error", err)
		return
	}

	d.deliver(conn, types.Envelope{
		Type: types.EventRoomHistory,
		Payload: types.RoomHistory{
			Room:     p.Room,
			Messages: d.messages.Recent(p.Room, d.historyWindow),
		},
	})
	d.deliver(conn, types.Envelope{
		Type:    types.EventSystemMessage,
		Payload: fmt.Sprintf("You joined the #%s room.", p.Room),
	})
}

func (d *Dispatcher) handleSendMessage(user *types.User, payload json.RawMessage) {
	var p types.SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed send_message payload", "user", user.ID, "error", err)
		return
	}

	msg := d.messages.Append(p.Room, user.Username, p.Message, p.FileURL)
	if d.archive != nil {
		d.archive.Record(msg)
	}
	d.broadcastRoom(p.Room, types.Envelope{Type: types.EventReceiveMessage, Payload: msg})
}

func (d *Dispatcher) handleMessageRead(user *types.User, payload json.RawMessage) {
	var p types.MessageReadPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed message_read payload", "user", user.ID, "error", err)
		return
	}

	msg, err := d.messages.MarkRead(p.Room, p.MessageID, user.Username)
	if err != nil {
		d.log.Debug("message_read dropped", "room", p.Room, "id", p.MessageID, "error", err)
		return
	}
	d.broadcastRoom(p.Room, types.Envelope{Type: types.EventMessageUpdated, Payload: msg})
}

func (d *Dispatcher) handleMessageReaction(user *types.User, payload json.RawMessage) {
	var p types.MessageReactionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed message_reaction payload", "user", user.ID, "error", err)
		return
	}

	msg, err := d.messages.React(p.Room, p.MessageID, p.Reaction, user.Username)
	if err != nil {
		d.log.Debug("message_reaction dropped", "room", p.Room, "id", p.MessageID, "error", err)
		return
	}
	d.broadcastRoom(p.Room, types.Envelope{Type: types.EventMessageUpdated, Payload: msg})
}

func (d *Dispatcher) handlePrivateMessage(conn interfaces.Connection, user *types.User, payload json.RawMessage) {
	var p types.PrivateMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed private_message payload", "user", user.ID, "error", err)
		return
	}

	msg, err := d.private.Send(user, p.To, p.Message)
	if errors.Is(err, direct.ErrRecipientNotFound) {
		d.deliver(conn, types.Envelope{
			Type:    types.EventSystemError,
			Payload: fmt.Sprintf("User with ID %s not found.", p.To),
		})
		return
	}

	env := types.Envelope{Type: types.EventPrivateMessage, Payload: msg}
	if recipient, ok := d.conns.Get(p.To); ok {
		d.deliver(recipient, env)
	}
	d.deliver(conn, env)
}

func (d *Dispatcher) handleTyping(user *types.User, payload json.RawMessage) {
	var p types.TypingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.log.Debug("malformed typing payload", "user", user.ID, "error", err)
		return
	}

	names, err := d.rooms.SetTyping(user.ID, p.Room, user.Username, p.IsTyping)
	if err != nil {
		d.log.Debug("typing dropped", "room", p.Room, "error", err)
		return
	}
	d.broadcastRoom(p.Room, types.Envelope{Type: types.EventTypingUsers, Payload: names})
}

func (d *Dispatcher) deliver(conn interfaces.Connection, env types.Envelope) {
	if err := conn.WriteEvent(env); err != nil {
		d.log.Debug("delivery failed", "conn", conn.ID(), "type", env.Type, "error", err)
		return
	}
	metrics.DeliveriesTotal.Inc()
}

func (d *Dispatcher) broadcastRoom(name string, env types.Envelope) {
	for _, connID := range d.rooms.MembersOf(name) {
		if conn, ok := d.conns.Get(connID); ok {
			d.deliver(conn, env)
		}
	}
}

func (d *Dispatcher) broadcastRoomExcept(name, exceptID string, env types.Envelope) {
	for _, connID := range d.rooms.MembersOf(name) {
		if connID == exceptID {
			continue
		}
		if conn, ok := d.conns.Get(connID); ok {
			d.deliver(conn, env)
		}
	}
}

func (d *Dispatcher) broadcastAll(env types.Envelope) {
	for _, conn := range d.conns.All() {
		d.deliver(conn, env)
	}
}
