package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, version int, e Event, at time.Time) EventRecord {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return EventRecord{StreamID: "o1", StreamType: StreamOrder, Version: version, EventType: e.EventType(), Payload: payload, CreatedAt: at}
}

func TestOrderTimelineRehydrate(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []EventRecord{
		record(t, 1, OrderPlaced{OrderID: "o1", OrderNumber: "ABCD1234", CustomerEmail: "a@b.com", Total: 42.5}, at),
		record(t, 2, OrderStatusChanged{OrderID: "o1", From: OrderPending, To: OrderProcessing}, at.Add(time.Hour)),
		record(t, 3, OrderNoteAdded{OrderID: "o1", Body: "gift wrap"}, at.Add(2*time.Hour)),
		record(t, 4, ShipmentCreated{OrderID: "o1", Carrier: "UPS", TrackingNumber: "1Z"}, at.Add(3*time.Hour)),
	}

	tl := NewOrderTimeline("o1")
	require.NoError(t, tl.Rehydrate(records))

	assert.Equal(t, 4, tl.Version)
	assert.Equal(t, OrderShipped, tl.Status)
	require.Len(t, tl.Entries, 4)
	assert.Equal(t, "Order ABCD1234 placed by a@b.com for $42.50", tl.Entries[0].Summary)
	assert.Equal(t, OrderProcessing, tl.Entries[1].Status)
	assert.Equal(t, "Note: gift wrap", tl.Entries[2].Summary)
	assert.Equal(t, at.Add(3*time.Hour), tl.Entries[3].Timestamp)
}

func TestOrderTimelineRejectsUnknownEvent(t *testing.T) {
	tl := NewOrderTimeline("o1")
	err := tl.Rehydrate([]EventRecord{{EventType: "Bogus", Payload: []byte(`{}`)}})
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "ABCDEF12", ShortID("abcdef12-3456-7890"))
	assert.Equal(t, "AB", ShortID("ab"))
}

func TestProductTotalStock(t *testing.T) {
	p := Product{Variants: []ProductVariant{{Stock: 3}, {Stock: 0}, {Stock: 7}}}
	assert.Equal(t, 10, p.TotalStock())
	assert.True(t, OrderDelivered.Valid())
	assert.False(t, OrderStatus("LOST").Valid())
}
