// Package kafka wraps the segmentio writer used to publish billing events.
package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes one message and waits for the broker acknowledgement.
type Producer interface {
	Produce(ctx context.Context, key, topic string, value []byte) error
	Close() error
}

type producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer returns a synchronous producer. Messages are keyed so that
// events of one invoice land on one partition in order.
func NewProducer(brokers []string, logger *zap.Logger) Producer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafkago.RequireAll,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		Logger: kafkago.LoggerFunc(func(msg string, args ...any) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}
	return &producer{writer: w, logger: logger}
}

func (p *producer) Produce(ctx context.Context, key, topic string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.writer.WriteTimeout)
	defer cancel()

	err := p.writer.WriteMessages(ctx, kafkago.Message{Topic: topic, Key: []byte(key), Value: value})
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	p.logger.Debug("message produced", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	p.logger.Info("kafka producer closed")
	return nil
}
