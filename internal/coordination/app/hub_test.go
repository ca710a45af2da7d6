package app

import (
	"encoding/json"
	"sync"
	"testing"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	m.Run()
}

// recordingWriter captures frames instead of writing to a socket
type recordingWriter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (w *recordingWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	w.frames = append(w.frames, buf)
	return nil
}

func (w *recordingWriter) responses(t *testing.T) []domain.WSResponse {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]domain.WSResponse, 0, len(w.frames))
	for _, frame := range w.frames {
		var resp domain.WSResponse
		if err := json.Unmarshal(frame, &resp); err != nil {
			t.Fatalf("bad frame %s: %v", frame, err)
		}
		out = append(out, resp)
	}
	return out
}

func newTestConn(userID, name, role, tenantID string) (*ClientConn, *recordingWriter) {
	writer := &recordingWriter{}
	conn := NewClientConn(domain.Identity{
		UserID:   userID,
		Name:     name,
		Role:     role,
		TenantID: tenantID,
	}, writer)
	return conn, writer
}

func TestConnectionHub_RegisterUnregister(t *testing.T) {
	hub := NewConnectionHub()
	conn, _ := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")

	assert.False(t, hub.IsOnline("user-1"))

	hub.Register(conn)
	assert.True(t, hub.IsOnline("user-1"))
	assert.Equal(t, 1, hub.ConnectionCount("user-1"))

	hub.Unregister(conn)
	assert.False(t, hub.IsOnline("user-1"))
	assert.Equal(t, 0, hub.ConnectionCount("user-1"))
}

func TestConnectionHub_MultiDevice(t *testing.T) {
	hub := NewConnectionHub()
	phone, phoneW := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")
	laptop, laptopW := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")

	hub.Register(phone)
	hub.Register(laptop)
	hub.JoinRoom(phone, domain.UserRoom("user-1"))
	hub.JoinRoom(laptop, domain.UserRoom("user-1"))
	assert.Equal(t, 2, hub.ConnectionCount("user-1"))

	hub.BroadcastToUser("user-1", domain.WSResponse{Action: string(domain.NotificationNew), Success: true})
	assert.Len(t, phoneW.responses(t), 1)
	assert.Len(t, laptopW.responses(t), 1)

	// one device leaving keeps the user online
	hub.Unregister(phone)
	assert.True(t, hub.IsOnline("user-1"))

	hub.BroadcastToUser("user-1", domain.WSResponse{Action: string(domain.NotificationNew), Success: true})
	assert.Len(t, phoneW.responses(t), 1)
	assert.Len(t, laptopW.responses(t), 2)
}

func TestConnectionHub_RoomBroadcast(t *testing.T) {
	hub := NewConnectionHub()
	member, memberW := newTestConn("user-1", "Ann", domain.RoleLAStaff, "tenant-1")
	other, otherW := newTestConn("user-2", "Bob", domain.RoleLAStaff, "tenant-1")

	hub.Register(member)
	hub.Register(other)
	hub.JoinRoom(member, domain.CaseRoom("case-1"))

	hub.BroadcastToRoom(domain.CaseRoom("case-1"), domain.WSResponse{Action: string(domain.CaseUpdate), Success: true})

	assert.Len(t, memberW.responses(t), 1)
	assert.Empty(t, otherW.responses(t))
}

func TestConnectionHub_BroadcastToRoomExcept(t *testing.T) {
	hub := NewConnectionHub()
	typist, typistW := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")
	typistPhone, typistPhoneW := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")
	reader, readerW := newTestConn("user-2", "Bob", domain.RoleLAStaff, "tenant-1")

	room := domain.ConversationRoom("conv-1")
	for _, conn := range []*ClientConn{typist, typistPhone, reader} {
		hub.Register(conn)
		hub.JoinRoom(conn, room)
	}

	hub.BroadcastToRoomExcept(room, "user-1", domain.WSResponse{Action: string(domain.MessageTyping), Success: true})

	// every connection of the excluded user is skipped, not just the sending one
	assert.Empty(t, typistW.responses(t))
	assert.Empty(t, typistPhoneW.responses(t))
	assert.Len(t, readerW.responses(t), 1)
}

func TestConnectionHub_UnregisterLeavesAllRooms(t *testing.T) {
	hub := NewConnectionHub()
	conn, connW := newTestConn("user-1", "Ann", domain.RoleLAStaff, "tenant-1")

	hub.Register(conn)
	hub.JoinRoom(conn, domain.CaseRoom("case-1"))
	hub.JoinRoom(conn, domain.ConversationRoom("conv-1"))
	assert.Len(t, hub.Rooms(conn), 2)

	hub.Unregister(conn)
	assert.Empty(t, hub.Rooms(conn))

	hub.BroadcastToRoom(domain.CaseRoom("case-1"), domain.WSResponse{Action: string(domain.CaseUpdate)})
	hub.BroadcastToRoom(domain.ConversationRoom("conv-1"), domain.WSResponse{Action: string(domain.MessageNew)})
	assert.Empty(t, connW.responses(t))
}

func TestConnectionHub_ConcurrentRegisterUnregister(t *testing.T) {
	hub := NewConnectionHub()

	// many devices of one user churning at once; the per-user set must
	// stay consistent through interleaved joins and broadcasts
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				conn, _ := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")
				hub.Register(conn)
				hub.JoinRoom(conn, domain.UserRoom("user-1"))
				hub.JoinRoom(conn, domain.CaseRoom("case-1"))
				hub.BroadcastToUser("user-1", domain.WSResponse{Action: string(domain.NotificationNew), Success: true})
				hub.Unregister(conn)
			}
		}()
	}
	wg.Wait()

	assert.False(t, hub.IsOnline("user-1"))
	assert.Equal(t, 0, hub.ConnectionCount("user-1"))

	// the rooms drained with the last device; a late subscriber sees nothing
	late, lateW := newTestConn("user-2", "Bob", domain.RoleLAStaff, "tenant-1")
	hub.Register(late)
	hub.BroadcastToRoom(domain.CaseRoom("case-1"), domain.WSResponse{Action: string(domain.CaseUpdate)})
	assert.Empty(t, lateW.responses(t))
}

func TestConnectionHub_JoinRoomUnregisteredNoop(t *testing.T) {
	hub := NewConnectionHub()
	conn, connW := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")

	hub.JoinRoom(conn, domain.CaseRoom("case-1"))

	hub.BroadcastToRoom(domain.CaseRoom("case-1"), domain.WSResponse{Action: string(domain.CaseUpdate)})
	assert.Empty(t, connW.responses(t))
}
