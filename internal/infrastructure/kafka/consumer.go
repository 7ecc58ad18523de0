package kafka

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one raw feed message.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads the change feed. Each consumer group sees every table
// mutation once.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader}
}

// Consume delivers messages to handler until the context is cancelled.
// Handler errors are logged and the loop keeps going; the feed is a cache
// refresh signal, not a transactional input.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Feed] Error reading message: %v", err)
			continue
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			log.Printf("[Feed] Error handling message: %v", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
