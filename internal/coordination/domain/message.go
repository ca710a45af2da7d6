package domain

// MessageType chat message kind
type MessageType string

const (
	// MessageTypeText plain text message
	MessageTypeText MessageType = "text"
	// MessageTypeFile file attachment reference
	MessageTypeFile MessageType = "file"
	// MessageTypeSystem system-generated content, including tombstones
	MessageTypeSystem MessageType = "system"
)

// TombstoneContent replaces the content of a soft-deleted message.
// The row keeps its id and position so history ordering never shifts.
const TombstoneContent = "This message has been deleted"

// ChatMessage one persisted message of a conversation
type ChatMessage struct {
	ID             string      `bson:"_id" json:"id"`
	ConversationID string      `bson:"conversation_id" json:"conversation_id"`
	SenderID       string      `bson:"sender_id" json:"sender_id"`
	SenderName     string      `bson:"sender_name,omitempty" json:"sender_name,omitempty"`
	Content        string      `bson:"content" json:"content"`
	Type           MessageType `bson:"type" json:"type"`
	ReplyTo        string      `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	Participants   []string    `bson:"participants" json:"participants"`
	Edited         bool        `bson:"edited" json:"edited"`
	EditedAt       int64       `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	Deleted        bool        `bson:"deleted" json:"deleted"`
	DeletedAt      int64       `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	CreatedAt      int64       `bson:"created_at" json:"created_at"`
}
