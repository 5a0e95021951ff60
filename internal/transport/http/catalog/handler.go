package catalog

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/planta/internal/dto"
	"github.com/Additional-Code/planta/internal/presentation/http/response"
	service "github.com/Additional-Code/planta/internal/service/catalog"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/planta/transport/http/catalog")

// Handler exposes slider and defect lists over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/obtenerSliders", h.sliders)
	e.GET("/obtenerDefectos", h.defects)
}

func (h *Handler) sliders(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.sliders")
	defer span.End()

	sliders, err := h.svc.Sliders(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	items := make([]dto.CatalogItem, len(sliders))
	for i, s := range sliders {
		items[i] = dto.CatalogItem{ID: s.ID, Value: s.Name}
	}
	return b.WithData(items).Build()
}

func (h *Handler) defects(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.defects")
	defer span.End()

	defects, err := h.svc.Defects(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	items := make([]dto.CatalogItem, len(defects))
	for i, d := range defects {
		items[i] = dto.CatalogItem{ID: d.ID, Value: d.Name}
	}
	return b.WithData(items).Build()
}
