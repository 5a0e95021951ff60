package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/planta/internal/database/dbtest"
	"github.com/Additional-Code/planta/internal/entity"
)

type invalidations int

func (i *invalidations) Invalidate(context.Context) { *i++ }

func TestCatalogIsIdempotent(t *testing.T) {
	conns := dbtest.Open(t)
	dbtest.Slider(t, conns, "S-10")

	var inv invalidations
	s := NewForDB(conns.Writer, &inv, nil)
	ctx := context.Background()

	inserted, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleSliders)-1+len(sampleDefects), inserted)
	assert.Equal(t, invalidations(1), inv)

	inserted, err = s.Catalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, invalidations(1), inv)

	var sliders []entity.Slider
	require.NoError(t, conns.Reader.NewSelect().Model(&sliders).Scan(ctx))
	assert.Len(t, sliders, len(sampleSliders))
}
