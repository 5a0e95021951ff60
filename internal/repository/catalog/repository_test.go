package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/planta/internal/database/dbtest"
)

func TestRepositoryListsByID(t *testing.T) {
	conns := dbtest.Open(t)
	repo := NewRepository(conns)
	ctx := context.Background()

	sliders, err := repo.Sliders(ctx)
	require.NoError(t, err)
	assert.Empty(t, sliders)
	assert.NotNil(t, sliders)

	first := dbtest.Slider(t, conns, "S-10")
	second := dbtest.Slider(t, conns, "S-20")
	dbtest.Defect(t, conns, "Rayado")

	sliders, err = repo.Sliders(ctx)
	require.NoError(t, err)
	require.Len(t, sliders, 2)
	assert.Equal(t, first, sliders[0].ID)
	assert.Equal(t, "S-10", sliders[0].Name)
	assert.Equal(t, second, sliders[1].ID)

	defects, err := repo.Defects(ctx)
	require.NoError(t, err)
	require.Len(t, defects, 1)
	assert.Equal(t, "Rayado", defects[0].Name)
}
