package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/config"
)

func TestDisabledMessagingUsesNoop(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{Enabled: false, Kafka: config.Kafka{Topic: "planta.events"}}}
	client, err := NewClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "planta.events", client.Topic())
	assert.NoError(t, client.Publish(context.Background(), []byte("k"), []byte("v"), map[string]string{"event-type": "x"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.Consume(ctx, nil), context.DeadlineExceeded)
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{Enabled: true, Driver: "nats"}}
	_, err := NewClient(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestFromKafkaCopiesHeadersAndPayload(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	raw := kafka.Message{
		Topic:  "planta.events",
		Key:    []byte("order-1"),
		Value:  []byte(`{"type":"order.finalized"}`),
		Offset: 7,
		Time:   at,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.finalized")},
			{Key: "traceparent", Value: []byte("00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")},
		},
	}

	msg := fromKafka(raw)
	raw.Value[0] = 'X'

	assert.Equal(t, "planta.events", msg.Topic)
	assert.Equal(t, []byte("order-1"), msg.Key)
	assert.Equal(t, `{"type":"order.finalized"}`, string(msg.Value))
	assert.Equal(t, int64(7), msg.Offset)
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "order.finalized", msg.Headers["event-type"])

	ctx := propagation.TraceContext{}.Extract(context.Background(), propagation.MapCarrier(msg.Headers))
	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", sc.TraceID().String())
}
