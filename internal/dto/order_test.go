package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGroupsKeepSliceOrder(t *testing.T) {
	groups := OrderGroups{
		{Number: 10, Items: []OrderDetailItem{{SliderName: "S-10", Quantity: 2, Sequence: 1}}},
		{Number: 9, Items: nil},
		{Number: 2, Items: []OrderDetailItem{{SliderName: "S-20", Quantity: 1, Sequence: 0}, {SliderName: "S-10", Quantity: 4, Sequence: 1}}},
	}

	raw, err := json.Marshal(map[string]any{"orders": groups})
	require.NoError(t, err)
	assert.Equal(t,
		`{"orders":{"10":[{"nombre_slider":"S-10","cantidad":2,"secuencia":1}],"9":[],"2":[{"nombre_slider":"S-20","cantidad":1,"secuencia":0},{"nombre_slider":"S-10","cantidad":4,"secuencia":1}]}}`,
		string(raw))

	raw, err = json.Marshal(OrderGroups{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}
