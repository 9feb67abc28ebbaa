package entity

import "time"

// ReturnStatus is the lifecycle state of a return request.
type ReturnStatus string

const (
	ReturnPending       ReturnStatus = "PENDING"
	ReturnApproved      ReturnStatus = "APPROVED"
	ReturnReceived      ReturnStatus = "RECEIVED"
	ReturnInspecting    ReturnStatus = "INSPECTING"
	ReturnRefundPending ReturnStatus = "REFUND_PENDING"
	ReturnRefunded      ReturnStatus = "REFUNDED"
	ReturnRejected      ReturnStatus = "REJECTED"
	ReturnCancelled     ReturnStatus = "CANCELLED"
)

func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnPending, ReturnApproved, ReturnReceived, ReturnInspecting,
		ReturnRefundPending, ReturnRefunded, ReturnRejected, ReturnCancelled:
		return true
	}
	return false
}

// Restocks reports whether reaching s puts restockable items back on the shelf.
func (s ReturnStatus) Restocks() bool {
	return s == ReturnReceived || s == ReturnRefunded
}

// ReturnReason is why the customer sent goods back.
type ReturnReason string

const (
	ReasonDefective      ReturnReason = "DEFECTIVE"
	ReasonWrongItem      ReturnReason = "WRONG_ITEM"
	ReasonNotAsDescribed ReturnReason = "NOT_AS_DESCRIBED"
	ReasonChangedMind    ReturnReason = "CHANGED_MIND"
	ReasonSizeIssue      ReturnReason = "SIZE_ISSUE"
	ReasonQualityIssue   ReturnReason = "QUALITY_ISSUE"
	ReasonArrivedLate    ReturnReason = "ARRIVED_LATE"
	ReasonOther          ReturnReason = "OTHER"
)

// Return is a return merchandise authorization against one order.
type Return struct {
	Model
	ReturnNumber         string       `gorm:"size:20;uniqueIndex" json:"returnNumber"`
	OrderID              string       `gorm:"size:36;index;not null" json:"orderId"`
	Order                *Order       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order,omitempty"`
	Status               ReturnStatus `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	Reason               ReturnReason `gorm:"size:30;not null" json:"reason"`
	ReasonDetails        string       `gorm:"type:text" json:"reasonDetails,omitempty"`
	CustomerEmail        string       `gorm:"size:255;index" json:"customerEmail"`
	CustomerName         string       `gorm:"size:255" json:"customerName"`
	CustomerPhone        string       `gorm:"size:50" json:"customerPhone,omitempty"`
	RefundAmount         float64      `gorm:"not null;default:0" json:"refundAmount"`
	RefundMethod         string       `gorm:"size:50" json:"refundMethod,omitempty"`
	ReturnLabelURL       string       `gorm:"size:1024" json:"returnLabelUrl,omitempty"`
	ReturnTrackingNumber string       `gorm:"size:255" json:"returnTrackingNumber,omitempty"`
	ReturnCarrier        string       `gorm:"size:50" json:"returnCarrier,omitempty"`
	RejectionReason      string       `gorm:"type:text" json:"rejectionReason,omitempty"`
	InternalNotes        string       `gorm:"type:text" json:"internalNotes,omitempty"`
	ApprovedAt           *time.Time   `json:"approvedAt,omitempty"`
	ApprovedBy           *string      `gorm:"size:36" json:"approvedBy,omitempty"`
	ReceivedAt           *time.Time   `json:"receivedAt,omitempty"`
	InspectedAt          *time.Time   `json:"inspectedAt,omitempty"`
	RefundedAt           *time.Time   `json:"refundedAt,omitempty"`
	RestockedAt          *time.Time   `json:"restockedAt,omitempty"`
	Items                []ReturnItem `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE" json:"items"`
}

// ReturnItem is one returned order line. VariantID is kept without a foreign key
// so the record survives catalog deletions.
type ReturnItem struct {
	Model
	ReturnID    string  `gorm:"size:36;index;not null" json:"returnId"`
	OrderItemID string  `gorm:"size:36;not null" json:"orderItemId"`
	VariantID   string  `gorm:"size:36;index;not null" json:"variantId"`
	ProductName string  `gorm:"size:255" json:"productName"`
	VariantName string  `gorm:"size:255" json:"variantName,omitempty"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	Condition   string  `gorm:"size:50" json:"condition,omitempty"`
	Restockable bool    `gorm:"not null" json:"restockable"`
}
