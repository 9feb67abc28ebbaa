package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
)

// NotificationGroup is the consumer group of the notification handlers.
const NotificationGroup = "notifications"

// NotificationService sends transactional email in response to broker events.
type NotificationService struct {
	mailer    mail.Mailer
	log       *zap.Logger
	publicURL string
}

func NewNotificationService(mailer mail.Mailer, log *zap.Logger, publicURL string) *NotificationService {
	return &NotificationService{mailer: mailer, log: log, publicURL: strings.TrimRight(publicURL, "/")}
}

// Run consumes every notification topic until ctx is cancelled.
func (s *NotificationService) Run(ctx context.Context, sub messaging.Subscriber) {
	done := make(chan struct{}, 3)
	for topic, handler := range map[string]func(context.Context, []byte) error{
		messaging.TopicOrderPlaced:   s.HandleOrderPlaced,
		messaging.TopicOrderShipped:  s.HandleOrderShipped,
		messaging.TopicSocialPostDue: s.HandleSocialPostDue,
	} {
		go func() {
			defer func() { done <- struct{}{} }()
			sub.Consume(ctx, topic, NotificationGroup, handler)
		}()
	}
	for range 3 {
		<-done
	}
}

func (s *NotificationService) unsubscribeURL() string {
	return s.publicURL + "/newsletter/unsubscribe"
}

// HandleOrderPlaced sends the order confirmation email.
func (s *NotificationService) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var e entity.OrderPlaced
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode OrderPlaced: %w", err)
	}
	items := make([]mail.LineItem, 0, len(e.Items))
	for _, it := range e.Items {
		name := it.ProductName
		if it.VariantName != "" {
			name += " - " + it.VariantName
		}
		items = append(items, mail.LineItem{Name: name, Quantity: it.Quantity, Total: it.Price * float64(it.Quantity)})
	}
	msg, err := mail.OrderConfirmationMessage(e.CustomerEmail, mail.OrderConfirmation{
		Name:           e.CustomerName,
		OrderNumber:    e.OrderNumber,
		Items:          items,
		Subtotal:       e.Subtotal,
		Discount:       e.Discount,
		Shipping:       e.Shipping,
		Tax:            e.Tax,
		Total:          e.Total,
		Conservation:   e.ConservationAmount,
		UnsubscribeURL: s.unsubscribeURL(),
	})
	if err != nil {
		return fmt.Errorf("failed to render order confirmation: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("Failed to send order confirmation", zap.String("order_id", e.OrderID), zap.Error(err))
		return nil
	}
	s.log.Info("Order confirmation sent", zap.String("order_id", e.OrderID))
	return nil
}

// HandleOrderShipped sends the shipping notification when requested.
func (s *NotificationService) HandleOrderShipped(ctx context.Context, payload []byte) error {
	var e entity.ShipmentCreated
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode ShipmentCreated: %w", err)
	}
	if !e.Notify {
		return nil
	}
	msg, err := mail.ShippingNotificationMessage(e.CustomerEmail, mail.ShippingNotification{
		Name:           e.CustomerName,
		OrderNumber:    e.OrderNumber,
		Carrier:        e.Carrier,
		TrackingNumber: e.TrackingNumber,
		UnsubscribeURL: s.unsubscribeURL(),
	})
	if err != nil {
		return fmt.Errorf("failed to render shipping notification: %w", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("Failed to send shipping notification", zap.String("order_id", e.OrderID), zap.Error(err))
		return nil
	}
	s.log.Info("Shipping notification sent", zap.String("order_id", e.OrderID))
	return nil
}

// HandleSocialPostDue logs posts that reached their time. Network publishing is done by
// whatever integration subscribes to the topic.
func (s *NotificationService) HandleSocialPostDue(_ context.Context, payload []byte) error {
	var e entity.SocialPostDue
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode SocialPostDue: %w", err)
	}
	s.log.Info("Social post due",
		zap.String("post_id", e.PostID),
		zap.String("platform", string(e.Platform)),
		zap.Time("scheduled_at", e.ScheduledAt),
	)
	return nil
}
