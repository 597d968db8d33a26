package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads a group of topics with a single group reader and hands
// each record to the handler along with the topic it arrived on.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.SugaredLogger
}

func NewConsumer(brokers, topics []string, groupID string, log *zap.SugaredLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return &Consumer{reader: reader, log: log}
}

func (c *Consumer) Run(ctx context.Context, handle func(topic string, value []byte)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				c.log.Info("kafka consumer stopping")
				return
			}
			c.log.Errorw("kafka read", "error", err)
			time.Sleep(time.Second)
			continue
		}
		handle(msg.Topic, msg.Value)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }
