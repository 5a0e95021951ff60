package inspection

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/planta/internal/config"
	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/event"
	repo "github.com/Additional-Code/planta/internal/repository/inspection"
	"github.com/Additional-Code/planta/internal/service"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/planta/service/inspection")
	serviceMeter  = otel.Meter("github.com/Additional-Code/planta/service/inspection")
)

// Store is the slice of the inspection repository the service needs.
type Store interface {
	Create(ctx context.Context, rec *entity.InspectionRecord) error
	Between(ctx context.Context, from, to time.Time) ([]entity.InspectionRecord, error)
}

// EventPublisher emits domain events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

// Input carries a new inspection sheet row.
type Input struct {
	SliderID int64
	DefectID int64
	Date     string
	Quantity int
}

// Service records and lists inspection sheet rows.
type Service struct {
	store     Store
	publisher EventPublisher
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
	recorded  metric.Int64Counter
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Publisher  *event.Publisher
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return New(p.Repository, p.Publisher, p.Config.App.Location, p.Logger)
}

// New builds a Service from explicit collaborators. "Today" is evaluated in
// loc; nil means the server's local zone.
func New(store Store, publisher EventPublisher, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	counter, err := serviceMeter.Int64Counter("inspections_recorded_total",
		metric.WithDescription("Inspection sheet rows stored"))
	if err != nil {
		logger.Warn("inspection counter unavailable", zap.Error(err))
		counter, _ = noop.NewMeterProvider().Meter("").Int64Counter("inspections_recorded_total")
	}
	return &Service{
		store:     store,
		publisher: publisher,
		location:  loc,
		now:       time.Now,
		logger:    logger,
		recorded:  counter,
	}
}

// WithClock replaces the clock used to decide what "today" is.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create validates and stores one inspection sheet row.
func (s *Service) Create(ctx context.Context, in Input) (*entity.InspectionRecord, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, errorbank.BadRequest("invalid fecha", errorbank.WithCause(err), errorbank.WithDetail("fecha", in.Date))
	}

	ctx, span := serviceTracer.Start(ctx, "InspectionService.Create", trace.WithAttributes(
		attribute.Int64("slider.id", in.SliderID),
		attribute.Int64("defect.id", in.DefectID),
	))
	defer span.End()

	rec := &entity.InspectionRecord{
		SliderID: in.SliderID,
		DefectID: in.DefectID,
		Date:     date,
		Quantity: in.Quantity,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("save inspection record", zap.Int64("slider_id", in.SliderID), zap.Int64("defect_id", in.DefectID), zap.Error(err))
		return nil, service.StoreError(err, "failed to save inspection record")
	}

	s.recorded.Add(ctx, 1)
	if s.publisher != nil {
		s.publisher.Publish(ctx, event.TypeInspectionRecorded, "inspection-"+strconv.FormatInt(rec.ID, 10), event.InspectionRecorded{
			InspectionID: rec.ID,
			SliderID:     rec.SliderID,
			DefectID:     rec.DefectID,
			Quantity:     rec.Quantity,
			Date:         rec.Date.Format(time.DateOnly),
		})
	}
	return rec, nil
}

// Today lists the rows dated on the current calendar day, newest first.
func (s *Service) Today(ctx context.Context) ([]entity.InspectionRecord, error) {
	ctx, span := serviceTracer.Start(ctx, "InspectionService.Today")
	defer span.End()

	start := calendarDay(s.now().In(s.location))
	records, err := s.store.Between(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, service.StoreError(err, "failed to load inspection records")
	}
	return records, nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}

// ParseDate reads a calendar date sent as YYYY-MM-DD or as a timestamp and
// returns midnight UTC of that date, the form dates are stored in.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return calendarDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validate(in Input) error {
	details := map[string]any{}
	if in.SliderID <= 0 {
		details["id_slider"] = "must be a positive id"
	}
	if in.DefectID <= 0 {
		details["id_defecto"] = "must be a positive id"
	}
	if strings.TrimSpace(in.Date) == "" {
		details["fecha"] = "is required"
	}
	if in.Quantity < 0 {
		details["cantidad"] = "must not be negative"
	}
	if len(details) > 0 {
		return errorbank.BadRequest("invalid inspection record", errorbank.WithDetails(details))
	}
	return nil
}
