package inspection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/planta/internal/database"
	"github.com/Additional-Code/planta/internal/entity"
	"github.com/Additional-Code/planta/internal/event"
	"github.com/Additional-Code/planta/pkg/errorbank"
)

type fakeStore struct {
	created  []*entity.InspectionRecord
	from, to time.Time
	err      error
}

func (f *fakeStore) Create(_ context.Context, rec *entity.InspectionRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = int64(len(f.created) + 1)
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeStore) Between(_ context.Context, from, to time.Time) ([]entity.InspectionRecord, error) {
	f.from, f.to = from, to
	return []entity.InspectionRecord{}, f.err
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, eventType, key string, payload any) {
	m.Called(ctx, eventType, key, payload)
}

func TestCreate(t *testing.T) {
	store := &fakeStore{}
	pub := &publisherMock{}
	pub.On("Publish", mock.Anything, event.TypeInspectionRecorded, "inspection-1", event.InspectionRecorded{
		InspectionID: 1, SliderID: 2, DefectID: 3, Quantity: 0, Date: "2025-06-02",
	}).Return()

	rec, err := New(store, pub, time.UTC, nil).Create(context.Background(), Input{SliderID: 2, DefectID: 3, Date: "2025-06-02", Quantity: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rec.ID)
	assert.True(t, rec.Date.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	pub.AssertExpectations(t)
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"slider", Input{DefectID: 1, Date: "2025-06-02"}, "id_slider"},
		{"defect", Input{SliderID: 1, Date: "2025-06-02"}, "id_defecto"},
		{"date", Input{SliderID: 1, DefectID: 1}, "fecha"},
		{"quantity", Input{SliderID: 1, DefectID: 1, Date: "2025-06-02", Quantity: -1}, "cantidad"},
		{"unparsable date", Input{SliderID: 1, DefectID: 1, Date: "02/06/2025"}, "fecha"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			_, err := New(store, nil, time.UTC, nil).Create(context.Background(), tc.in)

			var appErr *errorbank.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, errorbank.KindBadRequest, appErr.Kind())
			assert.Contains(t, appErr.Details(), tc.field)
			assert.Empty(t, store.created)
		})
	}
}

func TestCreateUnknownReference(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("%w: fk", database.ErrForeignKey)}
	pub := &publisherMock{}

	_, err := New(store, pub, time.UTC, nil).Create(context.Background(), Input{SliderID: 9, DefectID: 9, Date: "2025-06-02", Quantity: 1})
	assert.True(t, errorbank.IsKind(err, errorbank.KindConflict))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTodayUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 02:00 UTC on the 3rd is still the 2nd five hours west.
	now := time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC)
	store := &fakeStore{}

	_, err := New(store, nil, loc, nil).WithClock(func() time.Time { return now }).Today(context.Background())
	require.NoError(t, err)
	assert.True(t, store.from.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)), store.from)
	assert.True(t, store.to.Equal(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)), store.to)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-06-02", " 2025-06-02 ", "2025-06-02T18:45:00Z", "2025-06-02T23:10:00-03:00", "2025-06-02 08:00:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s -> %s", in, got)
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}
