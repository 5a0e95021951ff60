package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/config"
	"github.com/Additional-Code/planta/internal/messaging"
)

// Event types published on the messaging topic.
const (
	TypeOrderFinalized     = "order.finalized"
	TypeInspectionRecorded = "inspection.recorded"
)

// Message headers set on every published event.
const (
	HeaderType = "event-type"
	HeaderID   = "event-id"
)

// Envelope wraps every event on the wire.
type Envelope struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderFinalized is emitted after a new order number has been committed.
type OrderFinalized struct {
	OrderNumber  int64     `json:"order_number"`
	LineIDs      []int64   `json:"line_ids"`
	RegisteredAt time.Time `json:"registered_at"`
}

// InspectionRecorded is emitted after an inspection sheet row is stored.
type InspectionRecorded struct {
	InspectionID int64  `json:"inspection_id"`
	SliderID     int64  `json:"slider_id"`
	DefectID     int64  `json:"defect_id"`
	Quantity     int    `json:"quantity"`
	Date         string `json:"date"`
}

// Module provides the event publisher to Fx.
var Module = fx.Provide(NewPublisher)

// Publisher serialises domain events onto the messaging client. Failures
// are logged and swallowed; the database is the source of truth.
type Publisher struct {
	client  messaging.Client
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewPublisher wires a Publisher.
func NewPublisher(client messaging.Client, cfg config.Config, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:  client,
		enabled: cfg.Messaging.Enabled,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish sends payload as an event of the given type keyed by key.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) {
	if p == nil || !p.enabled || p.client == nil {
		return
	}
	env, err := Wrap(eventType, payload, p.now())
	if err != nil {
		p.logger.Error("marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("marshal event envelope", zap.String("type", eventType), zap.Error(err))
		return
	}
	headers := map[string]string{HeaderType: env.Type, HeaderID: env.ID}
	if err := p.client.Publish(ctx, []byte(key), value, headers); err != nil {
		p.logger.Error("publish event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}

// Wrap builds an envelope with a fresh id.
func Wrap(eventType string, payload any, at time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    raw,
	}, nil
}
