package app

import (
	"context"
	"encoding/json"
	"time"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/internal/coordination/repository"
	"case_coordination_service/pkg/logger"
	"case_coordination_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// CoordinationWebsocketHandler entry point of every live connection
type CoordinationWebsocketHandler struct {
	hub            *ConnectionHub
	directory      repository.UserDirectory
	roomUC         *RoomSubscriptionUseCase
	presenceUC     *PresenceUseCase
	typingUC       *TypingUseCase
	messageUC      *MessageUseCase
	notificationUC *NotificationUseCase
	activityUC     *ActivityBroadcaster
}

// NewCoordinationWebsocketHandler create CoordinationWebsocketHandler
func NewCoordinationWebsocketHandler(
	hub *ConnectionHub,
	directory repository.UserDirectory,
	roomUC *RoomSubscriptionUseCase,
	presenceUC *PresenceUseCase,
	typingUC *TypingUseCase,
	messageUC *MessageUseCase,
	notificationUC *NotificationUseCase,
	activityUC *ActivityBroadcaster,
) *CoordinationWebsocketHandler {
	return &CoordinationWebsocketHandler{
		hub:            hub,
		directory:      directory,
		roomUC:         roomUC,
		presenceUC:     presenceUC,
		typingUC:       typingUC,
		messageUC:      messageUC,
		notificationUC: notificationUC,
		activityUC:     activityUC,
	}
}

// HandleConnection run one connection from handshake to disconnect.
// The token was verified by the middleware; the directory lookup is the last
// authentication step, and a miss closes the socket before registration.
func (h *CoordinationWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenUser := conn.Locals(middlewares.TokenUserID)
	userID, ok := tokenUser.(string)
	if !ok || userID == "" {
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, string(domain.AuthMissingToken))
		return
	}

	identity, err := h.directory.GetByID(ctx, userID)
	if err != nil || identity == nil {
		authErr := &domain.AuthError{Kind: domain.AuthUserNotFound}
		logger.Log.Error("websocket auth failed",
			zap.String("userID", userID),
			zap.String("kind", string(authErr.Kind)),
			zap.Error(err),
		)
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, string(authErr.Kind))
		return
	}

	client := NewClientConn(*identity, conn)
	h.hub.Register(client)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", userID))
		h.hub.Unregister(client)
		// the sweep owns the offline transition; the disconnect only
		// restarts the stale window
		h.presenceUC.Touch(userID)
		conn.Close()
		cancel()
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	h.roomUC.JoinOnConnect(ctx, client)
	if err := h.presenceUC.UpdatePresence(ctx, *identity, domain.PresenceOnline, ""); err != nil {
		logger.Log.Errorf("presence on connect:", err)
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				client.writeMu.Lock()
				err := conn.WriteMessage(websocket.PingMessage, []byte("ping"))
				client.writeMu.Unlock()
				if err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, client, mt, message)
	}
}

func (h *CoordinationWebsocketHandler) execWebsocketAction(ctx context.Context, client *ClientConn, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, client, msg)
	default:
		h.sendError(client, "unknown action")
	}
}

func (h *CoordinationWebsocketHandler) textMessageAction(ctx context.Context, client *ClientConn, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	identity := client.Identity
	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	var actionErr error

	switch req.Action {
	// silent best-effort: no acknowledgment either way
	case string(domain.PresenceUpdate):
		if err := h.presenceUC.UpdatePresence(ctx, identity, domain.PresenceStatus(req.Status), req.CurrentPage); err != nil {
			logger.Log.Errorf("presence update:", err, zap.String("userID", identity.UserID))
		}
		return

	// silent best-effort: the broadcast is the only visible effect
	case string(domain.MessageTyping):
		h.typingUC.SetTyping(req.ConversationID, identity, req.IsTyping)
		return

	case string(domain.MessageSend):
		message, err := h.messageUC.SendMessage(
			ctx,
			identity,
			req.ConversationID,
			req.Content,
			domain.MessageType(req.MessageType),
			req.ReplyTo,
			req.Participants,
		)
		if err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["message_id"] = message.ID
			resp.Payload["created_at"] = message.CreatedAt
		}

	case string(domain.MessageEdit):
		message, err := h.messageUC.EditMessage(ctx, identity, req.MessageID, req.Content)
		if err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["message_id"] = message.ID
			resp.Payload["edited_at"] = message.EditedAt
		}

	case string(domain.MessageDelete):
		if err := h.messageUC.DeleteMessage(ctx, identity, req.MessageID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["message_id"] = req.MessageID
		}

	case string(domain.MessageHistory):
		messages, err := h.messageUC.History(ctx, req.ConversationID, req.Before, req.Limit)
		if err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["conversation_id"] = req.ConversationID
			resp.Payload["messages"] = messages
		}

	case string(domain.NotificationMarkRead):
		if err := h.notificationUC.MarkAsRead(ctx, identity.UserID, req.NotificationID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
		}

	case string(domain.NotificationUnread):
		notifications, err := h.notificationUC.Unread(ctx, identity.UserID)
		if err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["notifications"] = notifications
		}

	case string(domain.CaseJoin):
		if err := h.roomUC.JoinCaseRoom(client, req.CaseID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["case_id"] = req.CaseID
		}

	case string(domain.CaseLeave):
		if err := h.roomUC.LeaveCaseRoom(client, req.CaseID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["case_id"] = req.CaseID
		}

	case string(domain.ConversationJoin):
		if err := h.roomUC.JoinConversation(client, req.ConversationID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["conversation_id"] = req.ConversationID
		}

	case string(domain.ConversationLeave):
		if err := h.roomUC.LeaveConversation(client, req.ConversationID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
			resp.Payload["conversation_id"] = req.ConversationID
		}

	case string(domain.ActivitySubscribe):
		if err := h.roomUC.SubscribeActivity(client, domain.ActivityScope(req.Scope), req.ScopeID); err != nil {
			actionErr = err
		} else {
			resp.Success = true
		}

	default:
		h.sendError(client, "unknown message types ")
		return
	}

	if actionErr != nil {
		logger.Log.Error("websocket err ",
			zap.String("UserID", identity.UserID),
			zap.String("Action", req.Action),
			zap.String("err", actionErr.Error()),
		)
		// failure is scoped to this connection as an <action>:error ack
		resp.Action = string(domain.ErrorAction(domain.Action(req.Action)))
		resp.Error = actionErr.Error()
	}
	client.Send(resp)
}

func (h *CoordinationWebsocketHandler) sendError(client *ClientConn, errorMsg string) {
	client.Send(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Errorf("Failed to send CloseMessage: %v", err)
	}
	conn.Close()
}
