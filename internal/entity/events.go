package entity

import "time"

// PlacedItem is the line item summary carried by OrderPlaced.
type PlacedItem struct {
	VariantID   string  `json:"variantId"`
	ProductName string  `json:"productName"`
	VariantName string  `json:"variantName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderPlaced is recorded once the payment processor confirms a checkout.
type OrderPlaced struct {
	OrderID            string       `json:"orderId"`
	OrderNumber        string       `json:"orderNumber"`
	CustomerEmail      string       `json:"customerEmail"`
	CustomerName       string       `json:"customerName"`
	Subtotal           float64      `json:"subtotal"`
	Discount           float64      `json:"discount"`
	Shipping           float64      `json:"shipping"`
	Tax                float64      `json:"tax"`
	Total              float64      `json:"total"`
	ConservationAmount float64      `json:"conservationAmount"`
	Items              []PlacedItem `json:"items"`
	PlacedAt           time.Time    `json:"placedAt"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// NewOrderPlaced builds the event from a persisted order.
func NewOrderPlaced(o *Order) OrderPlaced {
	items := make([]PlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, PlacedItem{
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return OrderPlaced{
		OrderID:            o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerEmail:      o.CustomerEmail,
		CustomerName:       o.CustomerName,
		Subtotal:           o.Subtotal,
		Discount:           o.Discount,
		Shipping:           o.Shipping,
		Tax:                o.Tax,
		Total:              o.Total,
		ConservationAmount: o.ConservationAmount,
		Items:              items,
		PlacedAt:           o.CreatedAt,
	}
}

// OrderStatusChanged is recorded when staff move an order to a new status.
type OrderStatusChanged struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedBy string      `json:"changedBy,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }

// ShipmentCreated carries what the shipping notification needs.
type ShipmentCreated struct {
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	CustomerEmail  string    `json:"customerEmail"`
	CustomerName   string    `json:"customerName"`
	TrackingNumber string    `json:"trackingNumber"`
	Carrier        string    `json:"carrier"`
	Notify         bool      `json:"notify"`
	ShippedAt      time.Time `json:"shippedAt"`
}

func (e ShipmentCreated) EventType() string { return "ShipmentCreated" }

// OrderNoteAdded is recorded for every internal note.
type OrderNoteAdded struct {
	OrderID  string    `json:"orderId"`
	AuthorID string    `json:"authorId"`
	Body     string    `json:"body"`
	AddedAt  time.Time `json:"addedAt"`
}

func (e OrderNoteAdded) EventType() string { return "OrderNoteAdded" }

// SocialPostDue is published when a scheduled post reaches its time.
type SocialPostDue struct {
	PostID      string    `json:"postId"`
	Platform    Platform  `json:"platform"`
	Content     string    `json:"content"`
	Hashtags    string    `json:"hashtags"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (e SocialPostDue) EventType() string { return "SocialPostDue" }
