package domain

// NotificationPriority delivery priority hint for the client
type NotificationPriority string

const (
	// PriorityLow informational
	PriorityLow NotificationPriority = "low"
	// PriorityNormal default
	PriorityNormal NotificationPriority = "normal"
	// PriorityHigh needs attention
	PriorityHigh NotificationPriority = "high"
)

// Notification persisted once, pushed best-effort to live devices
type Notification struct {
	ID          string               `bson:"_id" json:"id"`
	RecipientID string               `bson:"recipient_id" json:"recipient_id"`
	Type        string               `bson:"type" json:"type"`
	Title       string               `bson:"title" json:"title"`
	Message     string               `bson:"message" json:"message"`
	SenderID    string               `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	RelatedID   string               `bson:"related_id,omitempty" json:"related_id,omitempty"`
	Priority    NotificationPriority `bson:"priority" json:"priority"`
	Read        bool                 `bson:"read" json:"read"`
	CreatedAt   int64                `bson:"created_at" json:"created_at"`
}
