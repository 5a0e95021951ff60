package event

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/event"
	"github.com/Additional-Code/planta/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/planta/worker/event")

// Module registers the event handlers with the worker engine.
var Module = fx.Module("worker_event",
	fx.Provide(
		fx.Annotate(
			NewOrderFinalizedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
		fx.Annotate(
			NewInspectionRecordedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderFinalizedHandler logs every order created from pending lines.
func NewOrderFinalizedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, env event.Envelope) error {
		_, span := workerTracer.Start(ctx, "worker.orders.finalized", trace.WithAttributes(
			attribute.String("event.id", env.ID),
		))
		defer span.End()

		var payload event.OrderFinalized
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			logger.Error("failed to decode order finalized", zap.String("event_id", env.ID), zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("order finalized event processed",
			zap.String("event_id", env.ID),
			zap.Int64("order_number", payload.OrderNumber),
			zap.Int64s("line_ids", payload.LineIDs),
			zap.Time("registered_at", payload.RegisteredAt),
		)
		return nil
	}

	return worker.HandlerRegistration{Type: event.TypeOrderFinalized, Handler: handler}
}

// NewInspectionRecordedHandler logs every stored inspection sheet row.
func NewInspectionRecordedHandler(logger *zap.Logger) worker.HandlerRegistration {
	handler := func(ctx context.Context, env event.Envelope) error {
		_, span := workerTracer.Start(ctx, "worker.inspections.recorded", trace.WithAttributes(
			attribute.String("event.id", env.ID),
		))
		defer span.End()

		var payload event.InspectionRecorded
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			logger.Error("failed to decode inspection recorded", zap.String("event_id", env.ID), zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("inspection recorded event processed",
			zap.String("event_id", env.ID),
			zap.Int64("inspection_id", payload.InspectionID),
			zap.Int64("slider_id", payload.SliderID),
			zap.Int64("defect_id", payload.DefectID),
			zap.Int("quantity", payload.Quantity),
			zap.String("date", payload.Date),
		)
		return nil
	}

	return worker.HandlerRegistration{Type: event.TypeInspectionRecorded, Handler: handler}
}
