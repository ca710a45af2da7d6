package app

import (
	"context"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	errprocess "case_coordination_service/pkg/err"
	"case_coordination_service/pkg/logger"

	"go.uber.org/zap"
)

// roomStrategy one per role: the exact authorization query the role issues and
// the room namespace its results map into
type roomStrategy struct {
	resolve func(ctx context.Context, resolver repository.CaseAccessResolver, identity domain.Identity) ([]string, error)
	room    func(id string) string
}

var roomStrategies = map[string]roomStrategy{
	domain.RoleParent: {
		resolve: func(ctx context.Context, resolver repository.CaseAccessResolver, identity domain.Identity) ([]string, error) {
			return resolver.ListCaseIDsForParent(ctx, identity.UserID)
		},
		room: domain.CaseRoom,
	},
	domain.RoleProfessional: {
		resolve: func(ctx context.Context, resolver repository.CaseAccessResolver, identity domain.Identity) ([]string, error) {
			return resolver.ListClientIDsForProfessional(ctx, identity.UserID)
		},
		room: domain.ClientRoom,
	},
	domain.RoleLAStaff: {
		resolve: func(ctx context.Context, resolver repository.CaseAccessResolver, identity domain.Identity) ([]string, error) {
			return resolver.ListCaseIDsForTenant(ctx, identity.TenantID)
		},
		room: domain.CaseRoom,
	},
	domain.RoleLAManager: {
		resolve: func(ctx context.Context, resolver repository.CaseAccessResolver, identity domain.Identity) ([]string, error) {
			return resolver.ListCaseIDsForTenant(ctx, identity.TenantID)
		},
		room: domain.CaseRoom,
	},
}

// RoomSubscriptionUseCase joins connections to their authorization-derived rooms
type RoomSubscriptionUseCase struct {
	hub      *ConnectionHub
	resolver repository.CaseAccessResolver
}

// NewRoomSubscriptionUseCase create RoomSubscriptionUseCase
func NewRoomSubscriptionUseCase(hub *ConnectionHub, resolver repository.CaseAccessResolver) *RoomSubscriptionUseCase {
	return &RoomSubscriptionUseCase{
		hub:      hub,
		resolver: resolver,
	}
}

// JoinOnConnect join the static rooms, then the dynamic set for the role.
// A dynamic lookup failure degrades to static rooms only and never aborts
// the connection.
func (uc *RoomSubscriptionUseCase) JoinOnConnect(ctx context.Context, conn *ClientConn) {
	identity := conn.Identity

	uc.hub.JoinRoom(conn, domain.UserRoom(identity.UserID))
	uc.hub.JoinRoom(conn, domain.TenantRoom(identity.TenantID))
	uc.hub.JoinRoom(conn, domain.RoleRoom(identity.Role))

	strategy, ok := roomStrategies[identity.Role]
	if !ok {
		logger.Log.Warn("no room strategy for role",
			zap.String("userID", identity.UserID),
			zap.String("role", identity.Role),
		)
		return
	}

	ids, err := strategy.resolve(ctx, uc.resolver, identity)
	if err != nil {
		// partial degradation: static rooms are live, dynamic rooms missing
		logger.Log.Error("dynamic room resolution failed, static rooms only",
			zap.String("userID", identity.UserID),
			zap.String("role", identity.Role),
			zap.Error(err),
		)
		return
	}

	for _, id := range ids {
		uc.hub.JoinRoom(conn, strategy.room(id))
	}
}

// JoinCaseRoom explicit application-requested case join; no re-authorization here
func (uc *RoomSubscriptionUseCase) JoinCaseRoom(conn *ClientConn, caseID string) error {
	if caseID == "" {
		return errprocess.Set("case id required")
	}
	uc.hub.JoinRoom(conn, domain.CaseRoom(caseID))
	return nil
}

// LeaveCaseRoom explicit application-requested case leave
func (uc *RoomSubscriptionUseCase) LeaveCaseRoom(conn *ClientConn, caseID string) error {
	if caseID == "" {
		return errprocess.Set("case id required")
	}
	uc.hub.LeaveRoom(conn, domain.CaseRoom(caseID))
	return nil
}

// JoinConversation open a conversation view; typing and edit/delete events
// reach only connections in this room
func (uc *RoomSubscriptionUseCase) JoinConversation(conn *ClientConn, conversationID string) error {
	if conversationID == "" {
		return errprocess.Set("conversation id required")
	}
	uc.hub.JoinRoom(conn, domain.ConversationRoom(conversationID))
	return nil
}

// LeaveConversation close a conversation view
func (uc *RoomSubscriptionUseCase) LeaveConversation(conn *ClientConn, conversationID string) error {
	if conversationID == "" {
		return errprocess.Set("conversation id required")
	}
	uc.hub.LeaveRoom(conn, domain.ConversationRoom(conversationID))
	return nil
}

// SubscribeActivity join an activity room; an empty scope id falls back to the
// caller's tenant
func (uc *RoomSubscriptionUseCase) SubscribeActivity(conn *ClientConn, scope domain.ActivityScope, scopeID string) error {
	switch scope {
	case domain.ActivityScopeCase, domain.ActivityScopeUser, domain.ActivityScopeGlobal:
	default:
		return errprocess.Set("unknown activity scope")
	}

	if scopeID == "" || scope == domain.ActivityScopeGlobal {
		scopeID = conn.Identity.TenantID
	}
	uc.hub.JoinRoom(conn, domain.ActivityRoom(scope, scopeID))
	return nil
}
