package models

import "time"

type Message struct {
	ID             string        `bson:"_id" json:"messageId"`
	ConversationID string        `bson:"conversation_id" json:"conversationId"`
	FromID         string        `bson:"from_id" json:"-"`
	Text           string        `bson:"message" json:"message"`
	CreatedAt      time.Time     `bson:"created_at" json:"createdAt"`
	ReadBy         []ReadReceipt `bson:"read_by" json:"readBy"`

	// From is resolved from the roster on read, not persisted with the
	// message document.
	From *User `bson:"-" json:"from,omitempty"`
}

// ReadByUser reports whether userID already has a receipt on the message.
func (m *Message) ReadByUser(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ReadReceipt records that one user has read one message. At most one
// receipt exists per (user, message) pair and it is never removed.
type ReadReceipt struct {
	UserID string    `bson:"user_id" json:"userId"`
	ReadAt time.Time `bson:"read_at" json:"readAt"`
}

type MessagePage struct {
	Items       []*Message `json:"items"`
	Total       int64      `json:"total"`
	HasNextPage bool       `json:"hasNextPage"`
}
