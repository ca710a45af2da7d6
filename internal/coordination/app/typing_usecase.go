package app

import (
	"sync"
	"time"

	"case_coordination_service/internal/coordination/domain"
)

type typingKey struct {
	conversationID string
	userID         string
}

type typingEntry struct {
	timer    *time.Timer
	seq      uint64
	userName string
}

// TypingUseCase per-conversation ephemeral "who is typing" set. Every entry
// self-expires after the timeout unless refreshed; a newer signal always
// cancels-and-replaces the pending auto-clear so a stale one never fires.
type TypingUseCase struct {
	hub     *ConnectionHub
	timeout time.Duration

	mu      sync.Mutex
	entries map[typingKey]*typingEntry
	seq     uint64
}

// NewTypingUseCase create TypingUseCase
func NewTypingUseCase(hub *ConnectionHub, timeout time.Duration) *TypingUseCase {
	return &TypingUseCase{
		hub:     hub,
		timeout: timeout,
		entries: make(map[typingKey]*typingEntry),
	}
}

// SetTyping record the signal and broadcast it to the conversation's other
// participants, never back to the typist's own connections
func (uc *TypingUseCase) SetTyping(conversationID string, identity domain.Identity, isTyping bool) {
	key := typingKey{conversationID: conversationID, userID: identity.UserID}

	uc.mu.Lock()
	if prev, ok := uc.entries[key]; ok {
		prev.timer.Stop()
		delete(uc.entries, key)
	}
	if isTyping {
		uc.seq++
		entry := &typingEntry{seq: uc.seq, userName: identity.Name}
		seq := entry.seq
		entry.timer = time.AfterFunc(uc.timeout, func() {
			uc.expire(key, seq, identity)
		})
		uc.entries[key] = entry
	}
	uc.mu.Unlock()

	uc.broadcast(conversationID, identity, isTyping)
}

// expire auto-clear fired by the timer; a superseded timer is a no-op
func (uc *TypingUseCase) expire(key typingKey, seq uint64, identity domain.Identity) {
	uc.mu.Lock()
	entry, ok := uc.entries[key]
	if !ok || entry.seq != seq {
		uc.mu.Unlock()
		return
	}
	delete(uc.entries, key)
	uc.mu.Unlock()

	uc.broadcast(key.conversationID, identity, false)
}

// TypingUsers user ids currently typing in a conversation
func (uc *TypingUseCase) TypingUsers(conversationID string) []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var users []string
	for key := range uc.entries {
		if key.conversationID == conversationID {
			users = append(users, key.userID)
		}
	}
	return users
}

func (uc *TypingUseCase) broadcast(conversationID string, identity domain.Identity, isTyping bool) {
	uc.hub.BroadcastToRoomExcept(domain.ConversationRoom(conversationID), identity.UserID, domain.WSResponse{
		Action:  string(domain.MessageTyping),
		Success: true,
		Payload: map[string]interface{}{
			"conversation_id": conversationID,
			"user_id":         identity.UserID,
			"user_name":       identity.Name,
			"is_typing":       isTyping,
		},
	})
}
