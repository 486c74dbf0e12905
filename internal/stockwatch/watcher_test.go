package stockwatch

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonb2b/orders-backend/internal/events"
)

func TestHandleStockAdjustedIgnoresOtherEvents(t *testing.T) {
	w := &Watcher{Threshold: 10}

	msg := kafkago.Message{Value: []byte(`{"event_type":"OrderPlaced","payload":{}}`)}
	require.NoError(t, w.HandleStockAdjusted(context.Background(), msg))
}

func TestHandleStockAdjustedRejectsMalformedJSON(t *testing.T) {
	w := &Watcher{Threshold: 10}

	msg := kafkago.Message{Value: []byte(`{not json`)}
	assert.Error(t, w.HandleStockAdjusted(context.Background(), msg))
}

func TestHandleStockAdjustedEventTypeConstant(t *testing.T) {
	// the filter above keys off this value; a rename would silently drop events
	assert.Equal(t, "StockAdjusted", events.EventStockAdjusted)
}
