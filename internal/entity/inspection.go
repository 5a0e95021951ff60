package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// InspectionRecord is one row of the inspection sheet: how many pieces of a
// slider showed a given defect on a given day.
type InspectionRecord struct {
	bun.BaseModel `bun:"table:planillainspeccion,alias:pi"`

	ID       int64     `bun:"id_inspeccion,pk,autoincrement"`
	SliderID int64     `bun:"id_slider,notnull"`
	DefectID int64     `bun:"id_defecto,notnull"`
	Date     time.Time `bun:"fecha,notnull"`
	Quantity int       `bun:"cantidad,notnull"`
}
