package domain

// Action websocket event name
type Action string

// Client -> server actions
const (
	// PresenceUpdate websocket action presence:update
	PresenceUpdate Action = "presence:update"

	// MessageSend websocket action message:send
	MessageSend Action = "message:send"
	// MessageTyping websocket action message:typing
	MessageTyping Action = "message:typing"
	// MessageEdit websocket action message:edit
	MessageEdit Action = "message:edit"
	// MessageDelete websocket action message:delete
	MessageDelete Action = "message:delete"
	// MessageHistory websocket action message:history
	MessageHistory Action = "message:history"

	// NotificationMarkRead websocket action notification:mark_read
	NotificationMarkRead Action = "notification:mark_read"
	// NotificationUnread websocket action notification:unread
	NotificationUnread Action = "notification:unread"

	// CaseJoin websocket action case:join
	CaseJoin Action = "case:join"
	// CaseLeave websocket action case:leave
	CaseLeave Action = "case:leave"

	// ConversationJoin websocket action conversation:join
	ConversationJoin Action = "conversation:join"
	// ConversationLeave websocket action conversation:leave
	ConversationLeave Action = "conversation:leave"

	// ActivitySubscribe websocket action activity:subscribe
	ActivitySubscribe Action = "activity:subscribe"
)

// Server -> client actions
const (
	// MessageNew push of a freshly persisted message
	MessageNew Action = "message:new"
	// MessageEdited push after an edit, conversation room only
	MessageEdited Action = "message:edited"
	// MessageDeleted push after a soft delete
	MessageDeleted Action = "message:deleted"
	// NotificationNew push of a freshly persisted notification
	NotificationNew Action = "notification:new"
	// CaseUpdate push after a collaborator-driven case change
	CaseUpdate Action = "case:update"
	// ActivityNew push of an activity event
	ActivityNew Action = "activity:new"
)

// ErrorAction error acknowledgment name for a failed client action
func ErrorAction(a Action) Action {
	return a + ":error"
}

// WSRequest websocket Request
type WSRequest struct {
	Action string `json:"action"`

	// presence:update
	Status      string `json:"status"`
	CurrentPage string `json:"current_page"`

	// message:*
	ConversationID string   `json:"conversation_id"`
	Content        string   `json:"content"`
	MessageType    string   `json:"message_type"`
	ReplyTo        string   `json:"reply_to"`
	Participants   []string `json:"participants"`
	IsTyping       bool     `json:"is_typing"`
	MessageID      string   `json:"message_id"`
	Before         int64    `json:"before"`
	Limit          int64    `json:"limit"`

	// notification:mark_read
	NotificationID string `json:"notification_id"`

	// case:join / case:leave
	CaseID string `json:"case_id"`

	// activity:subscribe
	Scope   string `json:"scope"`
	ScopeID string `json:"scope_id"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
