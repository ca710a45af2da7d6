package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"case_coordination_service/internal/coordination/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPresenceUseCase_UpdatePresence(t *testing.T) {
	ctx := context.Background()
	hub := NewConnectionHub()

	watcher, watcherW := newTestConn("watcher-1", "Bob", domain.RoleLAStaff, "tenant-1")
	hub.Register(watcher)
	hub.JoinRoom(watcher, domain.TenantRoom("tenant-1"))

	repo := new(MockPresenceRepository)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	uc := NewPresenceUseCase(hub, repo, time.Minute)
	identity := domain.Identity{UserID: "user-1", Name: "Ann", Role: domain.RoleParent, TenantID: "tenant-1"}

	err := uc.UpdatePresence(ctx, identity, domain.PresenceAway, "/cases/42")
	assert.NoError(t, err)

	rec, ok := uc.Get("user-1")
	assert.True(t, ok)
	assert.Equal(t, domain.PresenceAway, rec.Status)
	assert.Equal(t, "/cases/42", rec.CurrentPage)

	responses := watcherW.responses(t)
	assert.Len(t, responses, 1)
	assert.Equal(t, string(domain.PresenceUpdate), responses[0].Action)
	assert.Equal(t, "user-1", responses[0].Payload["user_id"])
	assert.Equal(t, string(domain.PresenceAway), responses[0].Payload["status"])
	repo.AssertExpectations(t)
}

func TestPresenceUseCase_UpdatePresence_InvalidStatus(t *testing.T) {
	uc := NewPresenceUseCase(NewConnectionHub(), nil, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}

	err := uc.UpdatePresence(context.Background(), identity, "sleeping", "")
	assert.Error(t, err)

	_, ok := uc.Get("user-1")
	assert.False(t, ok)
}

func TestPresenceUseCase_UpdatePresence_StoreFailureTolerated(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPresenceRepository)
	repo.On("Upsert", ctx, mock.Anything).Return(errors.New("redis down"))

	uc := NewPresenceUseCase(NewConnectionHub(), repo, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}

	// the registry stays authoritative when the snapshot store fails
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	rec, ok := uc.Get("user-1")
	assert.True(t, ok)
	assert.Equal(t, domain.PresenceOnline, rec.Status)
}

func TestPresenceUseCase_SweepOnce_FlipsStaleUser(t *testing.T) {
	ctx := context.Background()
	hub := NewConnectionHub()

	watcher, watcherW := newTestConn("watcher-1", "Bob", domain.RoleLAStaff, "tenant-1")
	hub.Register(watcher)
	hub.JoinRoom(watcher, domain.TenantRoom("tenant-1"))

	uc := NewPresenceUseCase(hub, nil, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	// the user vanished without an offline signal and holds no connection
	swept := uc.SweepOnce(ctx, time.Now().Add(2*time.Minute))
	assert.Len(t, swept, 1)
	assert.Equal(t, domain.PresenceOffline, swept[0].Status)

	rec, _ := uc.Get("user-1")
	assert.Equal(t, domain.PresenceOffline, rec.Status)

	responses := watcherW.responses(t)
	assert.Len(t, responses, 2)
	assert.Equal(t, string(domain.PresenceOffline), responses[1].Payload["status"])

	// a second sweep finds nothing, the offline transition happens once
	assert.Empty(t, uc.SweepOnce(ctx, time.Now().Add(4*time.Minute)))
	assert.Len(t, watcherW.responses(t), 2)
}

func TestPresenceUseCase_SweepOnce_SkipsConnectedUser(t *testing.T) {
	ctx := context.Background()
	hub := NewConnectionHub()

	conn, _ := newTestConn("user-1", "Ann", domain.RoleParent, "tenant-1")
	hub.Register(conn)

	uc := NewPresenceUseCase(hub, nil, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	// stale lastSeen but a live connection: the user stays online
	swept := uc.SweepOnce(ctx, time.Now().Add(2*time.Minute))
	assert.Empty(t, swept)

	rec, _ := uc.Get("user-1")
	assert.Equal(t, domain.PresenceOnline, rec.Status)
}

func TestPresenceUseCase_SweepOnce_SkipsFreshRecord(t *testing.T) {
	ctx := context.Background()
	uc := NewPresenceUseCase(NewConnectionHub(), nil, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	assert.Empty(t, uc.SweepOnce(ctx, time.Now().Add(30*time.Second)))
}

func TestPresenceUseCase_SweepEmitSkipsSupersededSnapshot(t *testing.T) {
	ctx := context.Background()
	hub := NewConnectionHub()

	watcher, watcherW := newTestConn("watcher-1", "Bob", domain.RoleLAStaff, "tenant-1")
	hub.Register(watcher)
	hub.JoinRoom(watcher, domain.TenantRoom("tenant-1"))

	repo := new(MockPresenceRepository)
	repo.On("Upsert", ctx, mock.Anything).Return(nil)

	uc := NewPresenceUseCase(hub, repo, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}

	// an explicit online update raced in after the sweep decided to flip;
	// the stale offline snapshot must not be emitted over it
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	staleSnapshot := domain.PresenceRecord{
		UserID:   "user-1",
		TenantID: "tenant-1",
		Status:   domain.PresenceOffline,
		LastSeen: time.Now().Add(-2 * time.Minute),
	}
	uc.emitSwept(ctx, staleSnapshot)

	responses := watcherW.responses(t)
	assert.Len(t, responses, 1)
	assert.Equal(t, string(domain.PresenceOnline), responses[0].Payload["status"])
	// only the online update reached the snapshot store
	repo.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestPresenceUseCase_TouchRestartsStaleWindow(t *testing.T) {
	ctx := context.Background()
	uc := NewPresenceUseCase(NewConnectionHub(), nil, time.Minute)
	identity := domain.Identity{UserID: "user-1", TenantID: "tenant-1"}
	assert.NoError(t, uc.UpdatePresence(ctx, identity, domain.PresenceOnline, ""))

	before, _ := uc.Get("user-1")
	time.Sleep(5 * time.Millisecond)
	uc.Touch("user-1")
	after, _ := uc.Get("user-1")

	assert.True(t, after.LastSeen.After(before.LastSeen))
	assert.Equal(t, domain.PresenceOnline, after.Status)
}
