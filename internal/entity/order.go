package entity

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ConservationRate is the share of the subtotal pledged to ocean conservation.
const ConservationRate = 0.10

// Order represents a customer order.
type Order struct {
	Model
	OrderNumber        string      `gorm:"size:20;index" json:"orderNumber"`
	UserID             *string     `gorm:"size:36;index" json:"userId,omitempty"`
	CustomerEmail      string      `gorm:"size:255;index" json:"customerEmail"`
	CustomerName       string      `gorm:"size:255" json:"customerName"`
	Status             OrderStatus `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	Subtotal           float64     `gorm:"not null" json:"subtotal"`
	Discount           float64     `gorm:"not null;default:0" json:"discount"`
	Shipping           float64     `gorm:"not null;default:0" json:"shipping"`
	Tax                float64     `gorm:"not null;default:0" json:"tax"`
	Total              float64     `gorm:"not null" json:"total"`
	ConservationAmount float64     `gorm:"not null;default:0" json:"conservationAmount"`
	DiscountCodeID     *string     `gorm:"size:36" json:"discountCodeId,omitempty"`
	PaymentReference   string      `gorm:"size:255;uniqueIndex;not null" json:"paymentReference"`
	ShippingAddress    string      `gorm:"size:500" json:"shippingAddress"`
	ShippingCity       string      `gorm:"size:255" json:"shippingCity"`
	ShippingState      string      `gorm:"size:100" json:"shippingState"`
	ShippingZip        string      `gorm:"size:20" json:"shippingZip"`
	ShippingCountry    string      `gorm:"size:100" json:"shippingCountry"`
	TrackingNumber     string      `gorm:"size:255" json:"trackingNumber,omitempty"`
	Carrier            string      `gorm:"size:50" json:"carrier,omitempty"`
	ShippedAt          *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt        *time.Time  `json:"deliveredAt,omitempty"`
	Items              []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Notes              []OrderNote `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// OrderItem is a line item within an order.
type OrderItem struct {
	Model
	OrderID     string  `gorm:"size:36;index;not null" json:"orderId"`
	VariantID   string  `gorm:"size:36;index;not null" json:"variantId"`
	ProductName string  `gorm:"size:255" json:"productName"`
	VariantName string  `gorm:"size:255" json:"variantName,omitempty"`
	SKU         string  `gorm:"column:sku;size:100" json:"sku"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"not null" json:"price"`
}

// OrderNote is an internal back-office note on an order.
type OrderNote struct {
	Model
	OrderID  string `gorm:"size:36;index;not null" json:"orderId"`
	AuthorID string `gorm:"size:36" json:"authorId"`
	Body     string `gorm:"type:text;not null" json:"body"`
}

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}
