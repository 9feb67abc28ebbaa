package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/invoice"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// DefaultCarrier is assumed when an order ships without a carrier.
const DefaultCarrier = "USPS"

// UpdateOrderInput changes an order's fulfilment state. Empty fields are left as is.
type UpdateOrderInput struct {
	Status           entity.OrderStatus `json:"status,omitempty"`
	TrackingNumber   string             `json:"trackingNumber,omitempty"`
	Carrier          string             `json:"carrier,omitempty"`
	SendNotification *bool              `json:"sendNotification,omitempty"`
}

// BulkOrderInput applies one action to many orders.
type BulkOrderInput struct {
	OrderIDs       []string `json:"orderIds" validate:"required,min=1"`
	Action         string   `json:"action" validate:"required,oneof=mark_shipped mark_delivered cancel mark_processing"`
	TrackingNumber string   `json:"trackingNumber,omitempty"`
	Carrier        string   `json:"carrier,omitempty"`
}

// BulkResult reports a bulk action.
type BulkResult struct {
	Updated int          `json:"updated"`
	Errors  []BulkFailed `json:"errors"`
}

// BulkFailed is an order a bulk action skipped.
type BulkFailed struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// OrderService orchestrates back-office order management.
type OrderService struct {
	orders    repository.OrderRepository
	events    repository.EventStore
	settings  repository.SettingsRepository
	publisher messaging.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	events repository.EventStore,
	settings repository.SettingsRepository,
	publisher messaging.Publisher,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		events:    events,
		settings:  settings,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List returns orders newest first.
func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]entity.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalid("Invalid status %s", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.orders.List(ctx, f)
}

func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Order not found")
	}
	return o, nil
}

// Update moves an order through fulfilment, stamping shippedAt and deliveredAt on
// the first transition into those states.
func (s *OrderService) Update(ctx context.Context, id string, in UpdateOrderInput, actorID string) (*entity.Order, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, invalid("Invalid status %s", in.Status)
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Order not found")
	}

	now := s.now().UTC()
	prev := o.Status
	if in.Status != "" {
		o.Status = in.Status
		if in.Status == entity.OrderShipped && prev != entity.OrderShipped {
			o.ShippedAt = &now
		}
		if in.Status == entity.OrderDelivered && prev != entity.OrderDelivered {
			o.DeliveredAt = &now
		}
	}
	if t := strings.TrimSpace(in.TrackingNumber); t != "" {
		o.TrackingNumber = t
	}
	if c := strings.TrimSpace(in.Carrier); c != "" {
		o.Carrier = c
	}
	if in.Status == entity.OrderShipped && o.TrackingNumber != "" && o.Carrier == "" {
		o.Carrier = DefaultCarrier
	}
	o.UpdatedAt = now

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, orNotFound(err, "Order not found")
	}

	var changes []entity.Event
	if o.Status != prev {
		changes = append(changes, entity.OrderStatusChanged{OrderID: o.ID, From: prev, To: o.Status, ChangedBy: actorID, ChangedAt: now})
	}

	notify := in.SendNotification == nil || *in.SendNotification
	if in.Status == entity.OrderShipped && in.TrackingNumber != "" {
		shipped := entity.ShipmentCreated{
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			CustomerEmail:  o.CustomerEmail,
			CustomerName:   o.CustomerName,
			TrackingNumber: o.TrackingNumber,
			Carrier:        o.Carrier,
			Notify:         notify,
			ShippedAt:      now,
		}
		changes = append(changes, shipped)
		if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderShipped, o.ID, shipped); err != nil {
			s.log.Error("Failed to publish ShipmentCreated", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	s.record(ctx, o.ID, changes...)

	s.log.Info("Order updated",
		zap.String("order_id", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(o.Status)),
	)
	return o, nil
}

// Bulk applies one fulfilment action to several orders. Delivered orders cannot be cancelled.
func (s *OrderService) Bulk(ctx context.Context, in BulkOrderInput, actorID string) (*BulkResult, error) {
	if err := check(in, "Invalid request data"); err != nil {
		return nil, err
	}
	res := &BulkResult{Errors: []BulkFailed{}}
	for _, id := range in.OrderIDs {
		upd := UpdateOrderInput{}
		switch in.Action {
		case "mark_shipped":
			upd = UpdateOrderInput{Status: entity.OrderShipped, TrackingNumber: in.TrackingNumber, Carrier: in.Carrier}
		case "mark_delivered":
			upd.Status = entity.OrderDelivered
		case "mark_processing":
			upd.Status = entity.OrderProcessing
		case "cancel":
			o, err := s.orders.FindByID(ctx, id)
			if err != nil {
				res.Errors = append(res.Errors, BulkFailed{ID: id, Error: "Order not found"})
				continue
			}
			if o.Status == entity.OrderDelivered {
				res.Errors = append(res.Errors, BulkFailed{ID: id, Error: "Cannot cancel delivered order"})
				continue
			}
			upd.Status = entity.OrderCancelled
		}
		if _, err := s.Update(ctx, id, upd, actorID); err != nil {
			msg := err.Error()
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				s.log.Error("Bulk order update failed", zap.String("order_id", id), zap.Error(err))
				msg = "Failed to update order"
			}
			res.Errors = append(res.Errors, BulkFailed{ID: id, Error: msg})
			continue
		}
		res.Updated++
	}
	return res, nil
}

// AddNote attaches an internal note.
func (s *OrderService) AddNote(ctx context.Context, orderID, authorID, body string) (*entity.OrderNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("Note cannot be empty")
	}
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, orNotFound(err, "Order not found")
	}
	n := &entity.OrderNote{OrderID: orderID, AuthorID: authorID, Body: body}
	if err := s.orders.AddNote(ctx, n); err != nil {
		return nil, err
	}
	s.record(ctx, orderID, entity.OrderNoteAdded{OrderID: orderID, AuthorID: authorID, Body: body, AddedAt: n.CreatedAt})
	return n, nil
}

// Timeline replays the order's event stream.
func (s *OrderService) Timeline(ctx context.Context, orderID string) (*entity.OrderTimeline, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, orNotFound(err, "Order not found")
	}
	records, err := s.events.LoadEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	t := entity.NewOrderTimeline(orderID)
	if err := t.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate order timeline: %w", err)
	}
	return t, nil
}

// Invoice renders the order as a PDF.
func (s *OrderService) Invoice(ctx context.Context, orderID string) (*entity.Order, []byte, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, orNotFound(err, "Order not found")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := invoice.Bytes(invoice.Seller{Name: settings.SiteName, Email: settings.ContactEmail}, o)
	if err != nil {
		return nil, nil, err
	}
	return o, pdf, nil
}

// record appends timeline events, retrying once when a concurrent writer moved the stream.
func (s *OrderService) record(ctx context.Context, orderID string, events ...entity.Event) {
	if len(events) == 0 {
		return
	}
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var version int
		version, err = s.events.StreamVersion(ctx, orderID)
		if err != nil {
			break
		}
		err = s.events.SaveEvents(ctx, orderID, entity.StreamOrder, version, events)
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	if err != nil {
		s.log.Error("Failed to record order timeline", zap.String("order_id", orderID), zap.Error(err))
	}
}
