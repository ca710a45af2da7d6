package app

import (
	"context"
	"sync"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	errprocess "case_coordination_service/pkg/err"
	"case_coordination_service/pkg/logger"

	"go.uber.org/zap"
)

// PresenceUseCase user-level presence registry. The in-memory map is
// authoritative; redis holds a best-effort snapshot for other services.
type PresenceUseCase struct {
	hub          *ConnectionHub
	presenceRepo repository.PresenceRepository

	mu      sync.Mutex
	records map[string]*domain.PresenceRecord

	staleThreshold time.Duration
}

// NewPresenceUseCase create PresenceUseCase; presenceRepo may be nil
func NewPresenceUseCase(hub *ConnectionHub, presenceRepo repository.PresenceRepository, staleThreshold time.Duration) *PresenceUseCase {
	return &PresenceUseCase{
		hub:            hub,
		presenceRepo:   presenceRepo,
		records:        make(map[string]*domain.PresenceRecord),
		staleThreshold: staleThreshold,
	}
}

// UpdatePresence explicit transition: set status and lastSeen=now, persist
// best-effort, broadcast the change to the user's tenant
func (uc *PresenceUseCase) UpdatePresence(ctx context.Context, identity domain.Identity, status domain.PresenceStatus, currentPage string) error {
	if !domain.ValidPresenceStatus(status) {
		return errprocess.Set("unknown presence status")
	}

	uc.mu.Lock()
	rec, ok := uc.records[identity.UserID]
	if !ok {
		rec = &domain.PresenceRecord{
			UserID:   identity.UserID,
			TenantID: identity.TenantID,
		}
		uc.records[identity.UserID] = rec
	}
	rec.Status = status
	rec.LastSeen = time.Now()
	rec.CurrentPage = currentPage
	snapshot := *rec
	uc.mu.Unlock()

	uc.persist(ctx, snapshot)
	uc.broadcast(snapshot)
	return nil
}

// Touch refresh lastSeen without changing status or broadcasting; called on
// disconnect so the stale window counts from the moment the last device left
func (uc *PresenceUseCase) Touch(userID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if rec, ok := uc.records[userID]; ok {
		rec.LastSeen = time.Now()
	}
}

// Get current record of a user
func (uc *PresenceUseCase) Get(userID string) (domain.PresenceRecord, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	rec, ok := uc.records[userID]
	if !ok {
		return domain.PresenceRecord{}, false
	}
	return *rec, true
}

// StartSweep run the periodic reconciliation until ctx is cancelled
func (uc *PresenceUseCase) StartSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				uc.SweepOnce(ctx, time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// SweepOnce implicit transition to offline: a record is flipped when it is
// stale and the user has no live connection. Already-offline records are
// skipped, so a user is swept exactly once. Returns the flipped records.
func (uc *PresenceUseCase) SweepOnce(ctx context.Context, now time.Time) []domain.PresenceRecord {
	var swept []domain.PresenceRecord

	uc.mu.Lock()
	for userID, rec := range uc.records {
		if rec.Status == domain.PresenceOffline {
			continue
		}
		if now.Sub(rec.LastSeen) <= uc.staleThreshold {
			continue
		}
		if uc.hub.IsOnline(userID) {
			continue
		}
		rec.Status = domain.PresenceOffline
		swept = append(swept, *rec)
	}
	uc.mu.Unlock()

	for _, snapshot := range swept {
		uc.emitSwept(ctx, snapshot)
	}
	return swept
}

// emitSwept persist and broadcast one sweep flip unless an explicit update
// landed after the flip was decided; the newer record already broadcast
// itself, so emitting the stale offline would leave observers wrong
func (uc *PresenceUseCase) emitSwept(ctx context.Context, snapshot domain.PresenceRecord) {
	uc.mu.Lock()
	rec, ok := uc.records[snapshot.UserID]
	superseded := !ok || rec.Status != domain.PresenceOffline || !rec.LastSeen.Equal(snapshot.LastSeen)
	uc.mu.Unlock()

	if superseded {
		return
	}
	uc.persist(ctx, snapshot)
	uc.broadcast(snapshot)
}

// persist best-effort: store errors are logged, never fatal
func (uc *PresenceUseCase) persist(ctx context.Context, snapshot domain.PresenceRecord) {
	if uc.presenceRepo == nil {
		return
	}
	if err := uc.presenceRepo.Upsert(ctx, snapshot); err != nil {
		logger.Log.Error("presence persist failed",
			zap.String("userID", snapshot.UserID),
			zap.Error(err),
		)
	}
}

func (uc *PresenceUseCase) broadcast(snapshot domain.PresenceRecord) {
	uc.hub.BroadcastToRoom(domain.TenantRoom(snapshot.TenantID), domain.WSResponse{
		Action:  string(domain.PresenceUpdate),
		Success: true,
		Payload: map[string]interface{}{
			"user_id":      snapshot.UserID,
			"status":       string(snapshot.Status),
			"last_seen":    snapshot.LastSeen.Unix(),
			"current_page": snapshot.CurrentPage,
		},
	})
}
