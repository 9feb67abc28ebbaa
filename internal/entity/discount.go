package entity

import "time"

// DiscountType selects how a discount amount is computed.
type DiscountType string

const (
	DiscountPercentage   DiscountType = "PERCENTAGE"
	DiscountFixedAmount  DiscountType = "FIXED_AMOUNT"
	DiscountFreeShipping DiscountType = "FREE_SHIPPING"
	DiscountBuyXGetY     DiscountType = "BUY_X_GET_Y"
)

// DiscountCode is a redeemable code subject to an activation window and usage limits.
type DiscountCode struct {
	Model
	Code                  string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Type                  DiscountType    `gorm:"size:20;not null" json:"type"`
	Value                 float64         `gorm:"not null" json:"value"`
	Description           string          `gorm:"size:500" json:"description,omitempty"`
	InternalNote          string          `gorm:"size:500" json:"internalNote,omitempty"`
	UsageLimit            *int            `json:"usageLimit,omitempty"`
	UsageLimitPerCustomer *int            `json:"usageLimitPerCustomer,omitempty"`
	MinPurchaseAmount     *float64        `json:"minPurchaseAmount,omitempty"`
	StartsAt              *time.Time      `json:"startsAt,omitempty"`
	ExpiresAt             *time.Time      `gorm:"index" json:"expiresAt,omitempty"`
	IsActive              bool            `gorm:"not null" json:"isActive"`
	CreatedBy             string          `gorm:"size:36" json:"createdBy,omitempty"`
	Usages                []DiscountUsage `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE" json:"-"`
}

// DiscountUsage records one redemption of a discount code.
type DiscountUsage struct {
	Model
	DiscountID    string  `gorm:"size:36;index;not null" json:"discountId"`
	OrderID       string  `gorm:"size:36;index" json:"orderId"`
	UserID        *string `gorm:"size:36" json:"userId,omitempty"`
	CustomerEmail string  `gorm:"size:255;index" json:"customerEmail"`
	Amount        float64 `gorm:"not null;default:0" json:"amount"`
}
