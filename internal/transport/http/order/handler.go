package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/planta/internal/dto"
	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/presentation/http/response"
	service "github.com/Additional-Code/planta/internal/service/order"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/planta/transport/http/order")

// Handler exposes order line and order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/guardarRegistroPedido", h.createLine)
	e.GET("/obtenerRegistroPedidos", h.pending)
	e.PUT("/actualizarRegistroPedido", h.updateLine)
	e.DELETE("/eliminarRegistroPedido/:id", h.deleteLine)
	e.POST("/crearPedido", h.finalize)
	e.GET("/obtenerPedidosDetallados", h.detailed)
	e.GET("/obtenerPedidos", h.orders)
	e.GET("/obtenerRegistrosPorNumeroPedido/:numero_pedido", h.linesByNumber)
}

func (h *Handler) createLine(c echo.Context) error {
	b := response.New(c)

	var payload dto.OrderLineRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.createLine")
	span.SetAttributes(attribute.Int64("slider.id", payload.SliderID.Int64()))
	defer span.End()

	line, err := h.svc.CreateLine(ctx, service.LineInput{
		SliderID: payload.SliderID.Int64(),
		Sequence: payload.Sequence.Int(),
		Quantity: payload.Quantity.Int(),
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).
		WithMessage("order line saved").
		WithField("id_registroPedido", line.ID).
		Build()
}

func (h *Handler) pending(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.pending")
	defer span.End()

	lines, err := h.svc.Pending(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.OrderLineResponse, len(lines))
	for i := range lines {
		out[i] = toLineDTO(&lines[i])
	}
	return b.WithData(out).Build()
}

func (h *Handler) updateLine(c echo.Context) error {
	b := response.New(c)

	var payload dto.OrderLineUpdateRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateLine", trace.WithAttributes(attribute.Int64("line.id", payload.ID.Int64())))
	defer span.End()

	err := h.svc.UpdateLine(ctx, payload.ID.Int64(), service.LineInput{
		SliderID: payload.SliderID.Int64(),
		Sequence: payload.Sequence.Int(),
		Quantity: payload.Quantity.Int(),
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMessage("order line updated").Build()
}

func (h *Handler) deleteLine(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.deleteLine", trace.WithAttributes(attribute.Int64("line.id", id)))
	defer span.End()

	if err := h.svc.DeleteLine(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMessage("order line deleted").Build()
}

func (h *Handler) finalize(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.finalize")
	defer span.End()

	number, err := h.svc.Finalize(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int64("order.number", number))
	return b.WithMessage("order created").WithField("orderNumber", number).Build()
}

func (h *Handler) detailed(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.detailed")
	defer span.End()

	groups, err := h.svc.Detailed(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make(dto.OrderGroups, len(groups))
	for i, g := range groups {
		items := make([]dto.OrderDetailItem, len(g.Lines))
		for j, l := range g.Lines {
			items[j] = dto.OrderDetailItem{SliderName: l.SliderName, Quantity: l.Quantity, Sequence: l.Sequence}
		}
		out[i] = dto.OrderGroup{Number: g.Number, Items: items}
	}
	return b.WithField("orders", out).Build()
}

func (h *Handler) orders(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.Orders(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = dto.OrderResponse{Number: o.Number, RegisteredAt: o.RegisteredAt}
	}
	return b.WithData(out).Build()
}

func (h *Handler) linesByNumber(c echo.Context) error {
	b := response.New(c)

	number, err := strconv.ParseInt(c.Param("numero_pedido"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid order number", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.linesByNumber", trace.WithAttributes(attribute.Int64("order.number", number)))
	defer span.End()

	rows, err := h.svc.Lines(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	out := make([]dto.OrderLineSummary, len(rows))
	for i, r := range rows {
		out[i] = dto.OrderLineSummary{SliderID: r.SliderID, SliderName: r.SliderName, Sequence: r.Sequence, Quantity: r.Quantity}
	}
	return b.WithData(out).Build()
}

func toLineDTO(line *entity.OrderLine) dto.OrderLineResponse {
	return dto.OrderLineResponse{
		ID:       line.ID,
		SliderID: line.SliderID,
		Sequence: line.Sequence,
		Quantity: line.Quantity,
		Status:   line.Status,
	}
}
