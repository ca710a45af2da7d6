package app

import (
	"context"
	"encoding/json"
	"sync"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	"case_coordination_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageWriter write side of a websocket connection; *websocket.Conn satisfies it
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// ClientConn one live device connection of a user. Created at handshake,
// destroyed at disconnect; owned exclusively by the ConnectionHub.
type ClientConn struct {
	ID       string
	Identity domain.Identity

	writer  MessageWriter
	writeMu sync.Mutex
}

// NewClientConn create a ClientConn around a websocket writer
func NewClientConn(identity domain.Identity, writer MessageWriter) *ClientConn {
	return &ClientConn{
		ID:       uuid.New().String(),
		Identity: identity,
		writer:   writer,
	}
}

// Send marshal and write one response frame; writes are serialized per connection
func (c *ClientConn) Send(resp domain.WSResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("marshal response error:", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.writer.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

// ConnectionHub maps users to their live connections and rooms to their
// members. All three indexes are guarded by one mutex; no operation spans
// another service's state, so no cross-structure locking exists.
type ConnectionHub struct {
	mu    sync.RWMutex
	users map[string]map[*ClientConn]struct{}
	rooms map[string]map[*ClientConn]struct{}
	conns map[*ClientConn]map[string]struct{}

	nodeID string
	fabric *repository.RedisPubSub
}

// NewConnectionHub create an empty hub
func NewConnectionHub() *ConnectionHub {
	return &ConnectionHub{
		users:  make(map[string]map[*ClientConn]struct{}),
		rooms:  make(map[string]map[*ClientConn]struct{}),
		conns:  make(map[*ClientConn]map[string]struct{}),
		nodeID: uuid.New().String(),
	}
}

// AttachFabric join the cross-process broadcast fabric. Without it the hub is
// single-process, which is the reference deployment.
func (h *ConnectionHub) AttachFabric(ctx context.Context, fabric *repository.RedisPubSub) error {
	h.fabric = fabric
	return fabric.Subscribe(ctx, func(env repository.RoomEnvelope) {
		if env.NodeID == h.nodeID {
			return
		}
		h.deliverLocal(env.Room, env.ExceptUserID, env.Response)
	})
}

// Register add a connection to its user's set
func (h *ConnectionHub) Register(conn *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.users[conn.Identity.UserID]
	if !ok {
		set = make(map[*ClientConn]struct{})
		h.users[conn.Identity.UserID] = set
	}
	set[conn] = struct{}{}
	h.conns[conn] = make(map[string]struct{})
}

// Unregister drop a connection from its user's set and from every room it
// joined. Emptying the user's set does not touch presence; the sweep owns
// the offline transition.
func (h *ConnectionHub) Unregister(conn *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.users[conn.Identity.UserID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.users, conn.Identity.UserID)
		}
	}

	for room := range h.conns[conn] {
		h.removeFromRoom(conn, room)
	}
	delete(h.conns, conn)
}

// JoinRoom add a connection to a room
func (h *ConnectionHub) JoinRoom(conn *ClientConn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	memberships, ok := h.conns[conn]
	if !ok {
		// not registered, nothing to join
		return
	}
	memberships[room] = struct{}{}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*ClientConn]struct{})
		h.rooms[room] = members
	}
	members[conn] = struct{}{}
}

// LeaveRoom remove a connection from a room
func (h *ConnectionHub) LeaveRoom(conn *ClientConn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if memberships, ok := h.conns[conn]; ok {
		delete(memberships, room)
	}
	h.removeFromRoom(conn, room)
}

// removeFromRoom caller holds h.mu
func (h *ConnectionHub) removeFromRoom(conn *ClientConn, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Rooms list the rooms a connection currently belongs to
func (h *ConnectionHub) Rooms(conn *ClientConn) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var rooms []string
	for room := range h.conns[conn] {
		rooms = append(rooms, room)
	}
	return rooms
}

// IsOnline check the user has at least one live connection
func (h *ConnectionHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// ConnectionCount number of live connections of a user
func (h *ConnectionHub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// BroadcastToRoom fan one response out to every member of a room
func (h *ConnectionHub) BroadcastToRoom(room string, resp domain.WSResponse) {
	h.broadcast(room, "", resp)
}

// BroadcastToRoomExcept fan out to a room, skipping every connection of one user
func (h *ConnectionHub) BroadcastToRoomExcept(room, exceptUserID string, resp domain.WSResponse) {
	h.broadcast(room, exceptUserID, resp)
}

// BroadcastToUser fan out to every live device of one user
func (h *ConnectionHub) BroadcastToUser(userID string, resp domain.WSResponse) {
	h.broadcast(domain.UserRoom(userID), "", resp)
}

func (h *ConnectionHub) broadcast(room, exceptUserID string, resp domain.WSResponse) {
	h.deliverLocal(room, exceptUserID, resp)

	if h.fabric != nil {
		err := h.fabric.Publish(repository.RoomEnvelope{
			NodeID:       h.nodeID,
			Room:         room,
			ExceptUserID: exceptUserID,
			Response:     resp,
		})
		if err != nil {
			logger.Log.Error("fabric publish error", zap.String("room", room), zap.Error(err))
		}
	}
}

// deliverLocal synchronous fan-out to local members once membership is known
func (h *ConnectionHub) deliverLocal(room, exceptUserID string, resp domain.WSResponse) {
	h.mu.RLock()
	targets := make([]*ClientConn, 0, len(h.rooms[room]))
	for conn := range h.rooms[room] {
		if exceptUserID != "" && conn.Identity.UserID == exceptUserID {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.Send(resp)
	}
}
