package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davant/chat-service/internal/models"
)

// Conversations is a read-through cache in front of the conversation store.
// A nil *Conversations is a no-op so the service works without Redis wired.
type Conversations struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewConversations(rdb *redis.Client, ttl time.Duration) *Conversations {
	return &Conversations{rdb: rdb, ttl: ttl}
}

func key(id string) string { return "conversation:" + id }

func (c *Conversations) Get(ctx context.Context, id string) (*models.Conversation, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var conv models.Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, false
	}
	return &conv, true
}

func (c *Conversations) Set(ctx context.Context, conv *models.Conversation) {
	if c == nil || c.rdb == nil || conv == nil {
		return
	}
	raw, err := json.Marshal(conv)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key(conv.ID), raw, c.ttl).Err()
}

func (c *Conversations) Invalidate(ctx context.Context, id string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key(id)).Err()
}
