package roster

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/apperr"
)

const (
	TopicUserCreated = "user_created"
	TopicUserUpdated = "user_updated"
	TopicUserDeleted = "user_deleted"
)

func Topics() []string {
	return []string{TopicUserCreated, TopicUserUpdated, TopicUserDeleted}
}

// Consumer applies point-in-time identity-change notices to the roster as
// incremental upserts and deletes, independent of the scheduled full sync.
type Consumer struct {
	roster *Service
	log    *zap.SugaredLogger
}

func NewConsumer(roster *Service, log *zap.SugaredLogger) *Consumer {
	return &Consumer{roster: roster, log: log}
}

func (c *Consumer) Handle(topic string, value []byte) {
	var user ExternalUser
	if err := json.Unmarshal(value, &user); err != nil {
		c.log.Errorw("unmarshal user event", "topic", topic, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch topic {
	case TopicUserCreated, TopicUserUpdated:
		if _, err := c.roster.Upsert(ctx, &user); err != nil {
			c.log.Errorw("could not upsert user from event", "userId", user.ID, "error", err)
			return
		}
		c.log.Infow("user created/updated", "userId", user.ID)
	case TopicUserDeleted:
		if _, err := c.roster.FindByID(ctx, user.ID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.log.Infow("could not find any user to delete", "userId", user.ID)
				return
			}
			c.log.Errorw("could not load user for delete", "userId", user.ID, "error", err)
			return
		}
		if err := c.roster.Delete(ctx, user.ID); err != nil {
			c.log.Errorw("could not delete user from event", "userId", user.ID, "error", err)
			return
		}
		c.log.Infow("deleted user", "userId", user.ID)
	default:
		c.log.Warnw("unknown user event topic", "topic", topic)
	}
}
