package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimelineEntry is one rendered step of an order's history.
type TimelineEntry struct {
	Version   int         `json:"version"`
	Type      string      `json:"type"`
	Status    OrderStatus `json:"status"`
	Summary   string      `json:"summary"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderTimeline rebuilds an order's history by replaying its event stream.
type OrderTimeline struct {
	OrderID string          `json:"orderId"`
	Version int             `json:"version"`
	Status  OrderStatus     `json:"status"`
	Entries []TimelineEntry `json:"entries"`
}

// NewOrderTimeline creates an empty timeline for the given order.
func NewOrderTimeline(orderID string) *OrderTimeline {
	return &OrderTimeline{OrderID: orderID, Status: OrderPending, Entries: []TimelineEntry{}}
}

// ApplyEvent mutates the timeline state based on the event.
func (t *OrderTimeline) ApplyEvent(e Event, at time.Time) error {
	var summary string
	switch e := e.(type) {
	case OrderPlaced:
		t.Status = OrderPending
		summary = fmt.Sprintf("Order %s placed by %s for $%.2f", e.OrderNumber, e.CustomerEmail, e.Total)
	case OrderStatusChanged:
		t.Status = e.To
		summary = fmt.Sprintf("Status changed from %s to %s", e.From, e.To)
	case ShipmentCreated:
		t.Status = OrderShipped
		summary = fmt.Sprintf("Shipped via %s, tracking %s", e.Carrier, e.TrackingNumber)
	case OrderNoteAdded:
		summary = "Note: " + e.Body
	default:
		return fmt.Errorf("unknown event type for order timeline: %s", e.EventType())
	}
	t.Version++
	t.Entries = append(t.Entries, TimelineEntry{
		Version:   t.Version,
		Type:      e.EventType(),
		Status:    t.Status,
		Summary:   summary,
		Timestamp: at,
	})
	return nil
}

// Rehydrate rebuilds the timeline from stored records.
func (t *OrderTimeline) Rehydrate(records []EventRecord) error {
	for _, rec := range records {
		var (
			e   Event
			err error
		)
		switch rec.EventType {
		case "OrderPlaced":
			var ev OrderPlaced
			err = json.Unmarshal(rec.Payload, &ev)
			e = ev
		case "OrderStatusChanged":
			var ev OrderStatusChanged
			err = json.Unmarshal(rec.Payload, &ev)
			e = ev
		case "ShipmentCreated":
			var ev ShipmentCreated
			err = json.Unmarshal(rec.Payload, &ev)
			e = ev
		case "OrderNoteAdded":
			var ev OrderNoteAdded
			err = json.Unmarshal(rec.Payload, &ev)
			e = ev
		default:
			return fmt.Errorf("unknown event type in stream: %s", rec.EventType)
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", rec.EventType, err)
		}
		if err := t.ApplyEvent(e, rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}
