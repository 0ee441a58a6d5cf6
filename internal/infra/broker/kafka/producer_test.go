//go:build unit

package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"trailer-rental/internal/pkg/config"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closes   int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closes++
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), "notifications", "res-1", []byte(`{"event":"reservation.confirmed"}`),
		map[string]string{"kind": "email"})

	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "notifications", msg.Topic)
	assert.Equal(t, []byte("res-1"), msg.Key)
	assert.Equal(t, []kafka.Header{{Key: "kind", Value: []byte("email")}}, msg.Headers)

	w.err = errors.New("leader not available")
	err = p.Publish(context.Background(), "notifications", "res-1", nil, nil)
	assert.ErrorContains(t, err, "leader not available")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closes)
	assert.ErrorIs(t, p.Publish(context.Background(), "notifications", "res-1", nil, nil), ErrProducerClosed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
