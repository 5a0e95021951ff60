package inspection

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Additional-Code/planta/internal/dto"
	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/presentation/http/response"
	service "github.com/Additional-Code/planta/internal/service/inspection"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/planta/transport/http/inspection")

// Handler exposes the inspection sheet over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an inspection Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/guardarRegistroPlanilla", h.create)
	e.GET("/obtenerRegistroPlanilla", h.today)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.InspectionRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "inspection.create")
	span.SetAttributes(
		attribute.Int64("slider.id", payload.SliderID.Int64()),
		attribute.Int64("defect.id", payload.DefectID.Int64()),
	)
	defer span.End()

	rec, err := h.svc.Create(ctx, service.Input{
		SliderID: payload.SliderID.Int64(),
		DefectID: payload.DefectID.Int64(),
		Date:     payload.Date,
		Quantity: payload.Quantity.Int(),
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).
		WithMessage("inspection record saved").
		WithField("id_registroPlanilla", rec.ID).
		Build()
}

func (h *Handler) today(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "inspection.today")
	defer span.End()

	records, err := h.svc.Today(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.InspectionResponse, len(records))
	for i := range records {
		out[i] = toDTO(&records[i])
	}
	return b.WithData(out).Build()
}

func toDTO(rec *entity.InspectionRecord) dto.InspectionResponse {
	return dto.InspectionResponse{
		ID:       rec.ID,
		SliderID: rec.SliderID,
		DefectID: rec.DefectID,
		Quantity: rec.Quantity,
		Date:     rec.Date.UTC().Format(time.DateOnly),
	}
}
