package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/planta/internal/event"
)

func TestOrderFinalizedHandlerLogsPayload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := NewOrderFinalizedHandler(zap.New(core))
	assert.Equal(t, event.TypeOrderFinalized, reg.Type)

	env, err := event.Wrap(event.TypeOrderFinalized, event.OrderFinalized{OrderNumber: 7, LineIDs: []int64{1, 2}}, time.Now())
	require.NoError(t, err)
	require.NoError(t, reg.Handler(context.Background(), env))

	entries := logs.FilterMessage("order finalized event processed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 7, entries[0].ContextMap()["order_number"])
}

func TestInspectionRecordedHandlerRejectsBadPayload(t *testing.T) {
	reg := NewInspectionRecordedHandler(zap.NewNop())
	assert.Equal(t, event.TypeInspectionRecorded, reg.Type)

	err := reg.Handler(context.Background(), event.Envelope{ID: "x", Type: event.TypeInspectionRecorded, Payload: []byte(`"nope"`)})
	assert.Error(t, err)
}
