package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/config"
	"github.com/Additional-Code/planta/internal/event"
	"github.com/Additional-Code/planta/internal/messaging"
)

var workerMeter = otel.Meter("github.com/Additional-Code/planta/worker")

const maxBackoff = 30 * time.Second

// Dispatch outcomes recorded on the events counter.
const (
	outcomeHandled = "handled"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// Handler processes one decoded event.
type Handler func(context.Context, event.Envelope) error

// HandlerRegistration binds an event type to its handler.
type HandlerRegistration struct {
	Type    string
	Handler Handler
}

// Params collects dependencies via Fx.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
}

// Engine consumes the event topic and dispatches on event type.
type Engine struct {
	client   messaging.Client
	logger   *zap.Logger
	cfg      config.Config
	handlers map[string]Handler
	events   metric.Int64Counter
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewEngine constructs the worker Engine. Two handlers for one event type
// is a wiring mistake and fails construction.
func NewEngine(p Params) (*Engine, error) {
	handlers := make(map[string]Handler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.Type == "" || r.Handler == nil {
			continue
		}
		if _, dup := handlers[r.Type]; dup {
			return nil, fmt.Errorf("duplicate handler for event type %q", r.Type)
		}
		handlers[r.Type] = r.Handler
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events, err := workerMeter.Int64Counter("worker_events_total",
		metric.WithDescription("Events consumed by the worker, by type and outcome"))
	if err != nil {
		logger.Warn("worker counter unavailable", zap.Error(err))
		events, _ = noop.NewMeterProvider().Meter("").Int64Counter("worker_events_total")
	}

	return &Engine{
		client:   p.Client,
		logger:   logger,
		cfg:      p.Config,
		handlers: handlers,
		events:   events,
	}, nil
}

// Module wires the engine into Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{
			OnStart: engine.start,
			OnStop:  engine.stop,
		})
	}),
)

// Dispatch decodes msg and runs the handler registered for its type.
// Undecodable messages and unknown types are logged and acknowledged so
// they do not block the partition.
func (e *Engine) Dispatch(ctx context.Context, msg messaging.Message) error {
	var env event.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		e.logger.Error("undecodable event skipped", zap.Int64("offset", msg.Offset), zap.Error(err))
		e.record(ctx, "unknown", outcomeSkipped)
		return nil
	}
	handler, ok := e.handlers[env.Type]
	if !ok {
		e.logger.Warn("no handler for event type", zap.String("type", env.Type), zap.String("event_id", env.ID))
		e.record(ctx, env.Type, outcomeSkipped)
		return nil
	}

	if err := handler(ctx, env); err != nil {
		e.record(ctx, env.Type, outcomeFailed)
		return fmt.Errorf("%s %s: %w", env.Type, env.ID, err)
	}
	e.record(ctx, env.Type, outcomeHandled)
	return nil
}

func (e *Engine) record(ctx context.Context, eventType, outcome string) {
	e.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("outcome", outcome),
	))
}

func (e *Engine) start(ctx context.Context) error {
	if !e.cfg.Messaging.Enabled || !e.cfg.Messaging.Workers.Enabled {
		e.logger.Info("worker engine disabled")
		return nil
	}
	if len(e.handlers) == 0 {
		e.logger.Info("worker engine has no handlers; skipping")
		return nil
	}

	concurrency := e.cfg.Messaging.Workers.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// The fx start context ends once startup completes; consumers outlive it.
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	for i := 0; i < concurrency; i++ {
		workerID := i
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.consumeLoop(runCtx, workerID)
		}()
	}

	e.logger.Info("worker engine started",
		zap.Int("workers", concurrency),
		zap.String("topic", e.client.Topic()),
	)
	return nil
}

func (e *Engine) stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		e.logger.Info("worker engine stopped")
		return nil
	}
}

// consumeLoop restarts Consume after transport failures, doubling the wait
// from the configured poll interval up to maxBackoff.
func (e *Engine) consumeLoop(ctx context.Context, workerID int) {
	initial := e.cfg.Messaging.Workers.PollInterval
	if initial <= 0 {
		initial = time.Second
	}
	backoff := initial

	for ctx.Err() == nil {
		err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
			e.logger.Debug("processing message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Int("worker", workerID),
			)
			return e.Dispatch(msgCtx, msg)
		})
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		e.logger.Error("consume loop error", zap.Int("worker", workerID), zap.Duration("retry_in", backoff), zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
