package entity

import "github.com/uptrace/bun"

// Slider is a slider model the plant manufactures. Rows are managed outside
// this service.
type Slider struct {
	bun.BaseModel `bun:"table:sliders,alias:s"`

	ID   int64  `bun:"id_sliders,pk,autoincrement"`
	Name string `bun:"nombreslider,notnull"`
}

// Defect is a defect kind an inspector can record.
type Defect struct {
	bun.BaseModel `bun:"table:defectos,alias:d"`

	ID   int64  `bun:"id_defecto,pk,autoincrement"`
	Name string `bun:"nombredefecto,notnull"`
}
