package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/planta/pkg/errorbank"
)

// Builder helps construct consistent HTTP responses.
//
// Lists are written as bare JSON arrays, which is what the shop-floor
// clients read. Everything else goes out as an envelope carrying "success"
// and "message" plus any extra top-level fields.
type Builder struct {
	ctx     echo.Context
	status  int
	data    any
	hasData bool
	message string
	fields  map[string]any
	err     error
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a payload written as the whole response body.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	b.hasData = true
	return b
}

// WithMessage sets the envelope message.
func (b *Builder) WithMessage(message string) *Builder {
	b.message = message
	return b
}

// WithField adds a top-level envelope field.
func (b *Builder) WithField(key string, value any) *Builder {
	if key == "" || key == "success" || key == "message" {
		return b
	}
	if b.fields == nil {
		b.fields = make(map[string]any)
	}
	b.fields[key] = value
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	if b.hasData && b.message == "" && len(b.fields) == 0 {
		return b.ctx.JSON(b.status, b.data)
	}
	return b.buildEnvelope()
}

func (b *Builder) buildEnvelope() error {
	payload := make(map[string]any, len(b.fields)+2)
	for k, v := range b.fields {
		payload[k] = v
	}
	payload["success"] = true
	if b.message != "" {
		payload["message"] = b.message
	}
	if b.hasData {
		payload["data"] = b.data
	}
	return b.ctx.JSON(b.status, payload)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	return b.ctx.JSON(status, appErr.Failure())
}
