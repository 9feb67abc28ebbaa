// Package payment creates hosted checkout sessions and verifies processor webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// EventCheckoutCompleted is the processor event that creates an order.
const EventCheckoutCompleted = "checkout.session.completed"

// LineItem is one priced line of a checkout session. UnitAmount is in cents.
type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64
	Quantity    int64
}

// SessionRequest describes the hosted checkout page to create.
type SessionRequest struct {
	LineItems []LineItem
	// Discount is a one-off amount in cents taken off the session total.
	Discount      int64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is a created hosted checkout page.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// CompletedCheckout is the paid session carried by a checkout.session.completed event.
type CompletedCheckout struct {
	SessionID     string
	PaymentIntent string
	CustomerEmail string
	CustomerName  string
	AmountTotal   int64
	Metadata      map[string]string
}

// Event is a verified webhook event.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
}

// Gateway is a payment processor.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// ToCents converts a dollar amount to integer cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromCents converts integer cents to dollars.
func FromCents(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// Round2 rounds a dollar amount to cents.
func Round2(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// ItemRef is a purchased variant recorded in session metadata.
type ItemRef struct {
	VariantID string
	Quantity  int
	Price     float64
}

// EncodeItems packs items as "variantId:qty:price|..." to fit processor metadata limits.
func EncodeItems(items []ItemRef) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s:%d:%s", it.VariantID, it.Quantity, decimal.NewFromFloat(it.Price).StringFixed(2))
	}
	return strings.Join(parts, "|")
}

// DecodeItems parses the output of EncodeItems.
func DecodeItems(s string) ([]ItemRef, error) {
	if s == "" {
		return nil, nil
	}
	var items []ItemRef
	for _, part := range strings.Split(s, "|") {
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed item %q", part)
		}
		qty, err := strconv.Atoi(fields[1])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("malformed quantity in %q", part)
		}
		price, err := decimal.NewFromString(fields[2])
		if err != nil {
			return nil, fmt.Errorf("malformed price in %q", part)
		}
		p, _ := price.Float64()
		items = append(items, ItemRef{VariantID: fields[0], Quantity: qty, Price: p})
	}
	return items, nil
}
