package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
)

const (
	TopicMessageCreated = "message_created"
	TopicMessageRead    = "message_read"
)

// MessageCreatedEvent notifies conversation participants of a new message.
// From is informational; the sender is not excluded from To.
type MessageCreatedEvent struct {
	Message *models.Message `json:"message"`
	To      []string        `json:"to"`
	From    string          `json:"from"`
}

type MessageReadEvent struct {
	Messages []*models.Message `json:"messages"`
	To       []string          `json:"to"`
	From     string            `json:"from"`
}

// Producer is the bus write side, satisfied by kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Publisher is fire-and-forget: a publish failure is logged and never fails
// the message write that triggered it.
type Publisher struct {
	producer Producer
	log      *zap.SugaredLogger
}

func NewPublisher(p Producer, log *zap.SugaredLogger) *Publisher {
	return &Publisher{producer: p, log: log}
}

func (p *Publisher) MessageCreated(ctx context.Context, msg *models.Message, to []string, from string) {
	p.emit(ctx, TopicMessageCreated, from, MessageCreatedEvent{Message: msg, To: to, From: from})
}

func (p *Publisher) MessageRead(ctx context.Context, msgs []*models.Message, to []string, from string) {
	p.emit(ctx, TopicMessageRead, from, MessageReadEvent{Messages: msgs, To: to, From: from})
}

func (p *Publisher) emit(ctx context.Context, topic, key string, event any) {
	if p == nil || p.producer == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.log.Errorw("marshal event", "topic", topic, "error", err)
		return
	}
	if err := p.producer.Publish(ctx, topic, key, value); err != nil {
		p.log.Errorw("publish event", "topic", topic, "error", err)
	}
}
