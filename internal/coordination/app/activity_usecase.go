package app

import (
	"context"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	errprocess "case_coordination_service/pkg/err"
	"case_coordination_service/pkg/logger"

	"go.uber.org/zap"
)

// ActivityBroadcaster stateless fan-out of activity and case events. Owns no
// persistence; durability stays with the originating collaborator. This is
// the surface REST handlers call after a store write.
type ActivityBroadcaster struct {
	hub       *ConnectionHub
	publisher repository.ActivityPublisher
}

// NewActivityBroadcaster create ActivityBroadcaster; publisher may be nil
func NewActivityBroadcaster(hub *ConnectionHub, publisher repository.ActivityPublisher) *ActivityBroadcaster {
	return &ActivityBroadcaster{
		hub:       hub,
		publisher: publisher,
	}
}

// Publish fan an activity event out to its room; global scope targets the
// tenant's room. The kafka tee is best-effort and never blocks the fan-out.
func (b *ActivityBroadcaster) Publish(ctx context.Context, scope domain.ActivityScope, scopeID string, payload map[string]interface{}) error {
	switch scope {
	case domain.ActivityScopeCase, domain.ActivityScopeUser, domain.ActivityScopeGlobal:
	default:
		return errprocess.Set("unknown activity scope")
	}
	if scopeID == "" {
		return errprocess.Set("activity scope id required")
	}

	event := domain.ActivityEvent{
		Scope:     scope,
		ScopeID:   scopeID,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}

	b.hub.BroadcastToRoom(domain.ActivityRoom(scope, scopeID), domain.WSResponse{
		Action:  string(domain.ActivityNew),
		Success: true,
		Payload: map[string]interface{}{
			"scope":     string(event.Scope),
			"scope_id":  event.ScopeID,
			"payload":   event.Payload,
			"timestamp": event.Timestamp,
		},
	})

	if b.publisher != nil {
		if err := b.publisher.Publish(ctx, event); err != nil {
			logger.Log.Error("activity egress failed",
				zap.String("scope", string(scope)),
				zap.String("scopeID", scopeID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// BroadcastCaseUpdate push a collaborator-driven case change to the case's
// live viewers, e.g. after a REST status update
func (b *ActivityBroadcaster) BroadcastCaseUpdate(caseID string, update map[string]interface{}) {
	payload := map[string]interface{}{
		"case_id":   caseID,
		"timestamp": time.Now().Unix(),
	}
	for k, v := range update {
		if k == "case_id" || k == "timestamp" {
			continue
		}
		payload[k] = v
	}

	b.hub.BroadcastToRoom(domain.CaseRoom(caseID), domain.WSResponse{
		Action:  string(domain.CaseUpdate),
		Success: true,
		Payload: payload,
	})
}
