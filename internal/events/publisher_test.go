package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davant/chat-service/internal/models"
)

type recordingProducer struct {
	topic string
	key   string
	value []byte
	err   error
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, value []byte) error {
	p.topic = topic
	p.key = key
	p.value = value
	return p.err
}

func TestMessageCreatedPayload(t *testing.T) {
	producer := &recordingProducer{}
	pub := NewPublisher(producer, zap.NewNop().Sugar())

	msg := &models.Message{ID: "m1", ConversationID: "c1", Text: "hi"}
	pub.MessageCreated(context.Background(), msg, []string{"a", "b"}, "a")

	assert.Equal(t, TopicMessageCreated, producer.topic)
	assert.Equal(t, "a", producer.key)

	var event MessageCreatedEvent
	require.NoError(t, json.Unmarshal(producer.value, &event))
	assert.Equal(t, "m1", event.Message.ID)
	assert.Equal(t, []string{"a", "b"}, event.To)
	assert.Equal(t, "a", event.From)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	pub := NewPublisher(producer, zap.NewNop().Sugar())

	// must not panic or surface the error to the caller
	pub.MessageRead(context.Background(), []*models.Message{{ID: "m1"}}, []string{"a"}, "a")
	assert.Equal(t, TopicMessageRead, producer.topic)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var pub *Publisher
	pub.MessageCreated(context.Background(), &models.Message{ID: "m1"}, nil, "a")
}
