package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// OrderLineRequest is the body of POST /guardarRegistroPedido.
type OrderLineRequest struct {
	SliderID Number  `json:"id_slider" validate:"required,gt=0"`
	Sequence *Number `json:"secuencia" validate:"required,gte=0"`
	Quantity Number  `json:"cantidad" validate:"required,gt=0"`
}

// OrderLineUpdateRequest is the body of PUT /actualizarRegistroPedido.
type OrderLineUpdateRequest struct {
	ID       Number  `json:"id_registroPedido" validate:"required,gt=0"`
	SliderID Number  `json:"id_slider" validate:"required,gt=0"`
	Sequence *Number `json:"secuencia" validate:"required,gte=0"`
	Quantity Number  `json:"cantidad" validate:"required,gt=0"`
}

// OrderLineResponse is a pending order line.
type OrderLineResponse struct {
	ID       int64  `json:"id_registroPedido"`
	SliderID int64  `json:"id_slider"`
	Sequence int    `json:"secuencia"`
	Quantity int    `json:"cantidad"`
	Status   string `json:"estado"`
}

// OrderResponse is one row of the order table.
type OrderResponse struct {
	Number       int64     `json:"numero_pedido"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

// OrderLineSummary is a line of a single order.
type OrderLineSummary struct {
	SliderID   int64  `json:"id_slider"`
	SliderName string `json:"nombreSlider"`
	Sequence   int    `json:"secuencia"`
	Quantity   int    `json:"cantidad"`
}

// OrderDetailItem is a line inside the detailed orders listing.
type OrderDetailItem struct {
	SliderName string `json:"nombre_slider"`
	Quantity   int    `json:"cantidad"`
	Sequence   int    `json:"secuencia"`
}

// OrderGroup holds the lines of one order number.
type OrderGroup struct {
	Number int64
	Items  []OrderDetailItem
}

// OrderGroups encodes as a JSON object keyed by order number, keeping the
// slice order instead of the sorted key order encoding/json would use.
type OrderGroups []OrderGroup

// MarshalJSON implements json.Marshaler.
func (g OrderGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(group.Number, 10)))
		buf.WriteByte(':')
		items := group.Items
		if items == nil {
			items = []OrderDetailItem{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
