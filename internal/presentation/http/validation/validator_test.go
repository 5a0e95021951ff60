package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/planta/pkg/errorbank"
)

type lineRequest struct {
	SliderID int64 `json:"id_slider" validate:"required,gt=0"`
	Sequence *int  `json:"secuencia" validate:"required,gte=0"`
	Quantity int   `json:"cantidad" validate:"required,gt=0"`
}

func TestValidateReportsJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(&lineRequest{SliderID: -1})
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
	assert.Equal(t, map[string]any{
		"id_slider": "gt=0",
		"secuencia": "required",
		"cantidad":  "required",
	}, appErr.Details())
}

func TestValidateAcceptsZeroSequence(t *testing.T) {
	zero := 0
	assert.NoError(t, New().Validate(&lineRequest{SliderID: 1, Sequence: &zero, Quantity: 3}))

	negative := -1
	err := New().Validate(&lineRequest{SliderID: 1, Sequence: &negative, Quantity: 3})
	var appErr *errorbank.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "gte=0", appErr.Details()["secuencia"])
}
