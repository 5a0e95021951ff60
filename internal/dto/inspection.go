package dto

// InspectionRequest is the body of POST /guardarRegistroPlanilla.
type InspectionRequest struct {
	SliderID Number  `json:"id_slider" validate:"required,gt=0"`
	DefectID Number  `json:"id_defecto" validate:"required,gt=0"`
	Date     string  `json:"fecha" validate:"required"`
	Quantity *Number `json:"cantidad" validate:"required,gte=0"`
}

// InspectionResponse is an inspection sheet row.
type InspectionResponse struct {
	ID       int64  `json:"id_registroPlanilla"`
	SliderID int64  `json:"id_slider"`
	DefectID int64  `json:"id_defecto"`
	Quantity int    `json:"cantidad"`
	Date     string `json:"fecha"`
}
