package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/database/dbtest"
	"github.com/Additional-Code/planta/internal/entity"
)

type fixture struct {
	conns  *database.Connections
	repo   *Repository
	slider int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	conns := dbtest.Open(t)
	return fixture{
		conns:  conns,
		repo:   NewRepository(conns),
		slider: dbtest.Slider(t, conns, "S-10"),
	}
}

func (f fixture) line(t *testing.T, seq, qty int) *entity.OrderLine {
	t.Helper()
	l := &entity.OrderLine{SliderID: f.slider, Sequence: seq, Quantity: qty, Status: entity.StatusPending}
	require.NoError(t, f.repo.CreateLine(context.Background(), l))
	require.NotZero(t, l.ID)
	return l
}

func TestLineLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.line(t, 1, 10)
	b := f.line(t, 2, 5)

	pending, err := f.repo.LinesByStatus(ctx, entity.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, a.ID, pending[0].ID)
	assert.Equal(t, entity.StatusPending, pending[0].Status)

	require.NoError(t, f.repo.UpdateLine(ctx, &entity.OrderLine{ID: b.ID, SliderID: f.slider, Sequence: 3, Quantity: 7}))
	// Same values again still counts as found.
	require.NoError(t, f.repo.UpdateLine(ctx, &entity.OrderLine{ID: b.ID, SliderID: f.slider, Sequence: 3, Quantity: 7}))

	pending, err = f.repo.LinesByStatus(ctx, entity.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 3, pending[1].Sequence)
	assert.Equal(t, 7, pending[1].Quantity)
	assert.Equal(t, entity.StatusPending, pending[1].Status)

	require.NoError(t, f.repo.DeleteLine(ctx, a.ID))
	assert.ErrorIs(t, f.repo.DeleteLine(ctx, a.ID), ErrNotFound)
	assert.ErrorIs(t, f.repo.UpdateLine(ctx, &entity.OrderLine{ID: 999, SliderID: f.slider, Quantity: 1}), ErrNotFound)

	err = f.repo.UpdateLine(ctx, &entity.OrderLine{ID: b.ID, SliderID: 999, Quantity: 1})
	assert.ErrorIs(t, err, database.ErrForeignKey)
}

func TestFinalize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	_, err := f.repo.Finalize(ctx, at)
	require.ErrorIs(t, err, ErrNoEligibleLines)

	a := f.line(t, 1, 10)
	b := f.line(t, 2, 5)

	res, err := f.repo.Finalize(ctx, at)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Number)
	assert.Equal(t, []int64{a.ID, b.ID}, res.LineIDs)

	pending, err := f.repo.LinesByStatus(ctx, entity.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assigned, err := f.repo.LinesByStatus(ctx, entity.StatusAssigned)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	// Nothing left to assign.
	_, err = f.repo.Finalize(ctx, at)
	require.ErrorIs(t, err, ErrNoEligibleLines)

	c := f.line(t, 1, 3)
	res, err = f.repo.Finalize(ctx, at.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Number)
	assert.Equal(t, []int64{c.ID}, res.LineIDs)

	orders, err := f.repo.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.EqualValues(t, 1, orders[0].Number)
	assert.True(t, orders[0].RegisteredAt.Equal(at))
	// Grouped by order number, then by line id within the order.
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, []int64{orders[0].LineID, orders[1].LineID, orders[2].LineID})
	assert.EqualValues(t, 1, orders[1].Number)
	assert.EqualValues(t, 2, orders[2].Number)

	details, err := f.repo.Details(ctx)
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.EqualValues(t, 2, details[0].OrderNumber)
	assert.Equal(t, "S-10", details[0].SliderName)
	assert.EqualValues(t, 1, details[1].OrderNumber)
	assert.Equal(t, 1, details[1].Sequence)
	assert.Equal(t, 10, details[1].Quantity)

	byNumber, err := f.repo.DetailsByNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byNumber, 2)
	assert.Equal(t, f.slider, byNumber[0].SliderID)
	assert.Equal(t, 5, byNumber[1].Quantity)

	none, err := f.repo.DetailsByNumber(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)

	// A line referenced by an order cannot be deleted.
	assert.ErrorIs(t, f.repo.DeleteLine(ctx, a.ID), database.ErrForeignKey)
}

func TestFinalizePicksUpNullStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	legacy := &entity.OrderLine{SliderID: f.slider, Sequence: 1, Quantity: 2}
	require.NoError(t, f.repo.CreateLine(ctx, legacy))

	res, err := f.repo.Finalize(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, []int64{legacy.ID}, res.LineIDs)
}

func TestFinalizeLosesToClaimedNumber(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.line(t, 1, 1)

	// A concurrent finalize already claimed number 1 but has not written
	// its pedido rows yet.
	_, err := f.conns.Writer.NewInsert().
		Model(&entity.OrderNumber{Number: 1, RegisteredAt: time.Now().UTC()}).
		Exec(ctx)
	require.NoError(t, err)

	_, err = f.repo.Finalize(ctx, time.Now().UTC())
	require.ErrorIs(t, err, database.ErrDuplicate)

	pending, err := f.repo.LinesByStatus(ctx, entity.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
