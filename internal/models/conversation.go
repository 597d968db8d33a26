package models

import (
	"slices"
	"time"
)

type Conversation struct {
	ID          string    `bson:"_id" json:"conversationId"`
	Name        string    `bson:"name" json:"name"`
	UserIDs     []string  `bson:"user_ids" json:"userIds"`
	AdminIDs    []string  `bson:"admin_ids" json:"adminIds"`
	CreatedBy   string    `bson:"created_by" json:"createdBy"`
	LastMessage *Message  `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsGroup is derived, never stored: two participants make a direct
// conversation, anything larger is a group.
func (c *Conversation) IsGroup() bool {
	return len(c.UserIDs) > 2
}

func (c *Conversation) HasUser(userID string) bool {
	return slices.Contains(c.UserIDs, userID)
}

func (c *Conversation) HasAdmin(userID string) bool {
	return slices.Contains(c.AdminIDs, userID)
}

type ConversationPage struct {
	Items       []*Conversation `json:"items"`
	Total       int64           `json:"total"`
	HasNextPage bool            `json:"hasNextPage"`
}
