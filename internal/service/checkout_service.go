package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/payment"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// CartItem is one line of the client-side cart.
type CartItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest starts a hosted checkout for the cart.
type CheckoutRequest struct {
	Items           []CartItem              `json:"items"`
	ShippingAddress *entity.ShippingAddress `json:"shippingAddress"`
	CustomerEmail   string                  `json:"customerEmail"`
	DiscountCode    string                  `json:"discountCode,omitempty"`
}

// Totals are the server-side amounts of a checkout.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	Shipping     float64 `json:"shipping"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	Conservation float64 `json:"conservationAmount"`
}

// ComputeTotals prices a cart. Shipping is free at or above the threshold or with a
// free-shipping code; tax applies to the discounted subtotal.
func ComputeTotals(subtotal float64, applied *AppliedDiscount, settings *entity.SiteSettings) Totals {
	t := Totals{Subtotal: payment.Round2(subtotal)}
	freeShipping := false
	if applied != nil {
		t.Discount = payment.Round2(min(applied.DiscountAmount, t.Subtotal))
		freeShipping = applied.FreeShipping
	}
	taxable := t.Subtotal - t.Discount
	if !freeShipping && (settings.FreeShippingThreshold <= 0 || taxable < settings.FreeShippingThreshold) {
		t.Shipping = settings.FlatShipping
	}
	t.Tax = payment.Round2(taxable * settings.TaxRate)
	t.Total = payment.Round2(taxable + t.Shipping + t.Tax)
	t.Conservation = payment.Round2(t.Subtotal * entity.ConservationRate)
	return t
}

// WebhookResult acknowledges a processed webhook.
type WebhookResult struct {
	Received bool   `json:"received"`
	OrderID  string `json:"orderId,omitempty"`
}

// Metadata keys written on the checkout session and read back by the webhook.
const (
	metaUserID       = "userId"
	metaEmail        = "customerEmail"
	metaSubtotal     = "subtotal"
	metaDiscount     = "discount"
	metaShipping     = "shipping"
	metaTax          = "tax"
	metaTotal        = "total"
	metaConservation = "conservationAmount"
	metaItems        = "items"
	metaDiscountID   = "discountCodeId"
	metaDiscountCode = "discountCode"
	metaShipName     = "shippingName"
	metaShipLine1    = "shippingLine1"
	metaShipLine2    = "shippingLine2"
	metaShipCity     = "shippingCity"
	metaShipState    = "shippingState"
	metaShipZip      = "shippingPostalCode"
	metaShipCountry  = "shippingCountry"
)

// CheckoutService creates payment sessions and turns completed payments into orders.
type CheckoutService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	events    repository.EventStore
	settings  repository.SettingsRepository
	discounts *DiscountService
	gateway   payment.Gateway
	publisher messaging.Publisher
	log       *zap.Logger
	publicURL string
}

// NewCheckoutService creates a CheckoutService. gateway may be nil when payments are not configured.
func NewCheckoutService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	events repository.EventStore,
	settings repository.SettingsRepository,
	discounts *DiscountService,
	gateway payment.Gateway,
	publisher messaging.Publisher,
	log *zap.Logger,
	publicURL string,
) *CheckoutService {
	return &CheckoutService{
		products:  products,
		orders:    orders,
		events:    events,
		settings:  settings,
		discounts: discounts,
		gateway:   gateway,
		publisher: publisher,
		log:       log,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// CreateSession prices the cart from the catalog and opens a hosted checkout.
func (s *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest, userID string) (*payment.Session, error) {
	if s.gateway == nil {
		return nil, unavailable("Payment processing is not currently available. Stripe is not configured.")
	}
	if len(req.Items) == 0 {
		return nil, invalid("Cart is empty")
	}
	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	if req.ShippingAddress == nil || email == "" {
		return nil, invalid("Missing shipping information")
	}
	if err := check(*req.ShippingAddress, "Missing shipping information"); err != nil {
		return nil, err
	}

	var (
		subtotal float64
		lines    []payment.LineItem
		refs     []payment.ItemRef
	)
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, invalid("Invalid quantity")
		}
		v, err := s.products.FindVariant(ctx, it.VariantID)
		if err != nil {
			return nil, orNotFound(err, "A product in your cart is no longer available")
		}
		if v.Product == nil || !v.Product.IsActive {
			return nil, notFound("A product in your cart is no longer available")
		}
		if v.Stock < it.Quantity {
			return nil, invalid("Only %d left in stock for %s", v.Stock, v.Product.Name)
		}
		subtotal += v.Price * float64(it.Quantity)
		image := v.ImageURL
		if image == "" {
			image = v.Product.ImageURL
		}
		lines = append(lines, payment.LineItem{
			Name:        fmt.Sprintf("%s - %s", v.Product.Name, v.Name),
			Description: v.SKU,
			ImageURL:    image,
			UnitAmount:  payment.ToCents(v.Price),
			Quantity:    int64(it.Quantity),
		})
		refs = append(refs, payment.ItemRef{VariantID: v.ID, Quantity: it.Quantity, Price: v.Price})
	}

	var applied *AppliedDiscount
	if code := strings.TrimSpace(req.DiscountCode); code != "" {
		a, err := s.discounts.Validate(ctx, code, subtotal, email)
		if err != nil {
			return nil, err
		}
		applied = a
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(subtotal, applied, settings)
	if totals.Shipping > 0 {
		lines = append(lines, payment.LineItem{Name: "Shipping", Description: "Standard shipping", UnitAmount: payment.ToCents(totals.Shipping), Quantity: 1})
	}
	if totals.Tax > 0 {
		lines = append(lines, payment.LineItem{
			Name:        "Tax",
			Description: fmt.Sprintf("Sales tax (%s%%)", trimFloat(settings.TaxRate*100)),
			UnitAmount:  payment.ToCents(totals.Tax),
			Quantity:    1,
		})
	}

	addr := req.ShippingAddress
	meta := map[string]string{
		metaEmail:        email,
		metaSubtotal:     money(totals.Subtotal),
		metaDiscount:     money(totals.Discount),
		metaShipping:     money(totals.Shipping),
		metaTax:          money(totals.Tax),
		metaTotal:        money(totals.Total),
		metaConservation: money(totals.Conservation),
		metaItems:        payment.EncodeItems(refs),
		metaShipName:     addr.Name,
		metaShipLine1:    addr.Line1,
		metaShipLine2:    addr.Line2,
		metaShipCity:     addr.City,
		metaShipState:    addr.State,
		metaShipZip:      addr.PostalCode,
		metaShipCountry:  addr.Country,
	}
	if userID != "" {
		meta[metaUserID] = userID
	}
	if applied != nil {
		meta[metaDiscountID] = applied.ID
		meta[metaDiscountCode] = applied.Code
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		LineItems:     lines,
		Discount:      payment.ToCents(totals.Discount),
		CustomerEmail: email,
		SuccessURL:    s.publicURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.publicURL + "/cart",
		Metadata:      meta,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Checkout session created", zap.String("session_id", sess.ID), zap.Float64("total", totals.Total))
	return sess, nil
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// HandleWebhook verifies a processor event and records the order for completed checkouts.
// Replays of the same session return the existing order.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.gateway == nil {
		return nil, unavailable("Stripe webhooks are not configured")
	}
	if signature == "" {
		return nil, invalid("No signature provided")
	}
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return nil, invalid("Invalid signature")
		}
		return nil, err
	}
	if evt.Type != payment.EventCheckoutCompleted || evt.Checkout == nil {
		s.log.Info("Ignoring webhook event", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
		return &WebhookResult{Received: true}, nil
	}

	order, err := s.orderFromCheckout(ctx, evt.Checkout)
	if err != nil {
		return nil, err
	}
	saved, created, err := s.orders.CreateFromCheckout(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if !created {
		s.log.Info("Order already exists (idempotency)", zap.String("order_id", saved.ID), zap.String("session_id", evt.Checkout.SessionID))
		return &WebhookResult{Received: true, OrderID: saved.ID}, nil
	}

	placed := entity.NewOrderPlaced(saved)
	if err := s.events.SaveEvents(ctx, saved.ID, entity.StreamOrder, 0, []entity.Event{placed}); err != nil {
		s.log.Error("Failed to save OrderPlaced event", zap.String("order_id", saved.ID), zap.Error(err))
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderPlaced, saved.ID, placed); err != nil {
		s.log.Error("Failed to publish OrderPlaced", zap.String("order_id", saved.ID), zap.Error(err))
	}

	s.log.Info("Order created from checkout",
		zap.String("order_id", saved.ID),
		zap.String("order_number", saved.OrderNumber),
		zap.Float64("total", saved.Total),
	)
	return &WebhookResult{Received: true, OrderID: saved.ID}, nil
}

func (s *CheckoutService) orderFromCheckout(ctx context.Context, c *payment.CompletedCheckout) (*entity.Order, error) {
	m := c.Metadata
	refs, err := payment.DecodeItems(m[metaItems])
	if err != nil {
		return nil, invalid("Invalid order items in session metadata")
	}
	if len(refs) == 0 {
		return nil, invalid("No items in session metadata")
	}

	email := m[metaEmail]
	if email == "" {
		email = strings.ToLower(c.CustomerEmail)
	}
	name := m[metaShipName]
	if name == "" {
		name = c.CustomerName
	}
	line := m[metaShipLine1]
	if l2 := m[metaShipLine2]; l2 != "" {
		line += ", " + l2
	}

	o := &entity.Order{
		CustomerEmail:      email,
		CustomerName:       name,
		Status:             entity.OrderPending,
		Subtotal:           parseMoney(m[metaSubtotal]),
		Discount:           parseMoney(m[metaDiscount]),
		Shipping:           parseMoney(m[metaShipping]),
		Tax:                parseMoney(m[metaTax]),
		Total:              parseMoney(m[metaTotal]),
		ConservationAmount: parseMoney(m[metaConservation]),
		PaymentReference:   c.SessionID,
		ShippingAddress:    line,
		ShippingCity:       m[metaShipCity],
		ShippingState:      m[metaShipState],
		ShippingZip:        m[metaShipZip],
		ShippingCountry:    m[metaShipCountry],
	}
	if o.Total == 0 && c.AmountTotal > 0 {
		o.Total = payment.FromCents(c.AmountTotal)
	}
	if o.ConservationAmount == 0 {
		o.ConservationAmount = payment.Round2(o.Subtotal * entity.ConservationRate)
	}
	if uid := m[metaUserID]; uid != "" {
		o.UserID = &uid
	}
	if did := m[metaDiscountID]; did != "" {
		o.DiscountCodeID = &did
	}

	for _, ref := range refs {
		item := entity.OrderItem{VariantID: ref.VariantID, Quantity: ref.Quantity, Price: ref.Price}
		v, err := s.products.FindVariant(ctx, ref.VariantID)
		switch {
		case err == nil:
			item.VariantName, item.SKU = v.Name, v.SKU
			if v.Product != nil {
				item.ProductName = v.Product.Name
			}
		case errors.Is(err, repository.ErrNotFound):
			s.log.Warn("Ordered variant no longer exists", zap.String("variant_id", ref.VariantID))
			item.ProductName = "Unavailable product"
		default:
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func parseMoney(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return payment.Round2(v)
}
