package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errs.New("kafka producer is closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes outbox jobs. The topic travels with each message so one
// writer serves every topic.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if !cfg.Enabled() {
		return nil, errs.New("kafka: at least one broker is required")
	}
	errorLogger := logger.With(slog.String("component", "kafka"))
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			errorLogger.Error(fmt.Sprintf(msg, args...))
		}),
	}
	return &Producer{writer: writer, logger: logger}, nil
}

// Publish writes one message keyed for per-key ordering.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errs.Wrapf(err, "kafka: publish to %s", topic)
	}
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.writer.Close(); err != nil {
		return errs.Wrap(err, "kafka: close writer")
	}
	return nil
}
