package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/event"
	repo "github.com/Additional-Code/planta/internal/repository/order"
	"github.com/Additional-Code/planta/internal/service"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/planta/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/planta/service/order")
)

// Store is the slice of the order repository the service needs.
type Store interface {
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	LinesByStatus(ctx context.Context, status string) ([]entity.OrderLine, error)
	UpdateLine(ctx context.Context, line *entity.OrderLine) error
	DeleteLine(ctx context.Context, id int64) error
	Finalize(ctx context.Context, registeredAt time.Time) (*repo.Finalized, error)
	Orders(ctx context.Context) ([]entity.Order, error)
	Details(ctx context.Context) ([]entity.OrderLineDetail, error)
	DetailsByNumber(ctx context.Context, number int64) ([]entity.OrderLineDetail, error)
}

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

// LineInput carries the mutable fields of an order line.
type LineInput struct {
	SliderID int64
	Sequence int
	Quantity int
}

// Group is the lines of one order number in query order.
type Group struct {
	Number int64
	Lines  []entity.OrderLineDetail
}

// Service encapsulates the order line workflow.
type Service struct {
	store     Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
	finalized metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Publisher  *event.Publisher
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Publisher, p.Logger)
}

// New builds a Service from explicit collaborators.
func New(store Store, publisher EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	counter, err := serviceMeter.Int64Counter("orders_finalized_total",
		metric.WithDescription("Orders created by grouping pending lines"))
	if err != nil {
		logger.Warn("order counter unavailable", zap.Error(err))
		counter, _ = noop.NewMeterProvider().Meter("").Int64Counter("orders_finalized_total")
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		finalized: counter,
	}
}

// WithClock replaces the clock used to stamp new orders.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateLine stores a new pending order line.
func (s *Service) CreateLine(ctx context.Context, in LineInput) (*entity.OrderLine, error) {
	if err := validateLine(in); err != nil {
		return nil, err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.CreateLine", trace.WithAttributes(attribute.Int64("slider.id", in.SliderID)))
	defer span.End()

	line := &entity.OrderLine{
		SliderID: in.SliderID,
		Sequence: in.Sequence,
		Quantity: in.Quantity,
		Status:   entity.StatusPending,
	}
	if err := s.store.CreateLine(ctx, line); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("save order line", zap.Int64("slider_id", in.SliderID), zap.Error(err))
		return nil, service.StoreError(err, "failed to save order line")
	}
	return line, nil
}

// Pending lists lines waiting for an order.
func (s *Service) Pending(ctx context.Context) ([]entity.OrderLine, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Pending")
	defer span.End()

	lines, err := s.store.LinesByStatus(ctx, entity.StatusPending)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, service.StoreError(err, "failed to load order lines")
	}
	return lines, nil
}

// UpdateLine rewrites slider, sequence and quantity of line id.
func (s *Service) UpdateLine(ctx context.Context, id int64, in LineInput) error {
	if id <= 0 {
		return errorbank.BadRequest("invalid order line id", errorbank.WithDetail("id_registroPedido", id))
	}
	if err := validateLine(in); err != nil {
		return err
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateLine", trace.WithAttributes(attribute.Int64("line.id", id)))
	defer span.End()

	err := s.store.UpdateLine(ctx, &entity.OrderLine{
		ID:       id,
		SliderID: in.SliderID,
		Sequence: in.Sequence,
		Quantity: in.Quantity,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("order line not found", errorbank.WithDetail("id_registroPedido", id))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("update order line", zap.Int64("id", id), zap.Error(err))
		return service.StoreError(err, "failed to update order line")
	}
	return nil
}

// DeleteLine removes line id.
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	if id <= 0 {
		return errorbank.BadRequest("invalid order line id", errorbank.WithDetail("id_registroPedido", id))
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.DeleteLine", trace.WithAttributes(attribute.Int64("line.id", id)))
	defer span.End()

	err := s.store.DeleteLine(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("order line not found", errorbank.WithDetail("id_registroPedido", id))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("delete order line", zap.Int64("id", id), zap.Error(err))
		return service.StoreError(err, "failed to delete order line")
	}
	return nil
}

// Finalize assigns every eligible line to a new order and returns its number.
func (s *Service) Finalize(ctx context.Context) (int64, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Finalize")
	defer span.End()

	res, err := s.store.Finalize(ctx, s.now().UTC())
	if errors.Is(err, repo.ErrNoEligibleLines) {
		return 0, errorbank.Unprocessable("no order lines available to create an order")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("finalize order", zap.Error(err))
		return 0, service.StoreError(err, "failed to create order")
	}
	span.SetAttributes(attribute.Int64("order.number", res.Number))

	s.finalized.Add(ctx, 1)
	s.logger.Info("order created", zap.Int64("order_number", res.Number), zap.Int("lines", len(res.LineIDs)))
	if s.publisher != nil {
		s.publisher.Publish(ctx, event.TypeOrderFinalized, "order-"+strconv.FormatInt(res.Number, 10), event.OrderFinalized{
			OrderNumber:  res.Number,
			LineIDs:      res.LineIDs,
			RegisteredAt: res.RegisteredAt,
		})
	}
	return res.Number, nil
}

// Orders lists every order row.
func (s *Service) Orders(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Orders")
	defer span.End()

	orders, err := s.store.Orders(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, service.StoreError(err, "failed to load orders")
	}
	return orders, nil
}

// Detailed groups every order's lines by order number, newest order first.
func (s *Service) Detailed(ctx context.Context) ([]Group, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Detailed")
	defer span.End()

	rows, err := s.store.Details(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, service.StoreError(err, "failed to load detailed orders")
	}
	return GroupByNumber(rows), nil
}

// Lines returns the lines of one order.
func (s *Service) Lines(ctx context.Context, number int64) ([]entity.OrderLineDetail, error) {
	if number <= 0 {
		return nil, errorbank.BadRequest("invalid order number", errorbank.WithDetail("numero_pedido", number))
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Lines", trace.WithAttributes(attribute.Int64("order.number", number)))
	defer span.End()

	rows, err := s.store.DetailsByNumber(ctx, number)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, service.StoreError(err, "failed to load order lines")
	}
	return rows, nil
}

// GroupByNumber folds joined rows into groups, keeping the order in which
// each number first appears and the row order inside a group.
func GroupByNumber(rows []entity.OrderLineDetail) []Group {
	groups := make([]Group, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.OrderNumber]
		if !ok {
			i = len(groups)
			index[row.OrderNumber] = i
			groups = append(groups, Group{Number: row.OrderNumber})
		}
		groups[i].Lines = append(groups[i].Lines, row)
	}
	return groups
}

func validateLine(in LineInput) error {
	details := map[string]any{}
	if in.SliderID <= 0 {
		details["id_slider"] = "must be a positive id"
	}
	if in.Sequence < 0 {
		details["secuencia"] = "must not be negative"
	}
	if in.Quantity <= 0 {
		details["cantidad"] = "must be positive"
	}
	if len(details) > 0 {
		return errorbank.BadRequest("invalid order line", errorbank.WithDetails(details))
	}
	return nil
}
