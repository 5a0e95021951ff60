package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order line states as stored in registropedido.estado.
const (
	StatusPending  = "pendiente"
	StatusAssigned = "asignado"
)

// OrderLine is a requested slider quantity waiting to be grouped into an order.
type OrderLine struct {
	bun.BaseModel `bun:"table:registropedido,alias:rp"`

	ID       int64  `bun:"id_registropedido,pk,autoincrement"`
	SliderID int64  `bun:"id_slider,notnull"`
	Sequence int    `bun:"secuencia,notnull"`
	Quantity int    `bun:"cantidad,notnull"`
	Status   string `bun:"estado,nullzero"`
}

// Order links one order line to the order number it was finalized under.
// Several rows share a number; a line belongs to at most one order.
type Order struct {
	bun.BaseModel `bun:"table:pedido,alias:p"`

	LineID       int64     `bun:"id_registropedido,pk"`
	Number       int64     `bun:"numero_pedido,notnull"`
	RegisteredAt time.Time `bun:"fecha_registro,notnull"`
}

// OrderNumber claims an order number. Its primary key keeps two finalize
// runs from handing out the same number.
type OrderNumber struct {
	bun.BaseModel `bun:"table:pedido_numero,alias:pn"`

	Number       int64     `bun:"numero_pedido,pk"`
	RegisteredAt time.Time `bun:"fecha_registro,notnull"`
}

// OrderLineDetail is an order line joined with its order and slider.
type OrderLineDetail struct {
	OrderNumber int64  `bun:"numero_pedido"`
	SliderID    int64  `bun:"id_slider"`
	SliderName  string `bun:"nombreslider"`
	Sequence    int    `bun:"secuencia"`
	Quantity    int    `bun:"cantidad"`
}
