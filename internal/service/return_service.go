package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// ReturnItemInput selects an order line to send back.
type ReturnItemInput struct {
	OrderItemID string `json:"orderItemId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	// UnitPrice overrides the price paid when set.
	UnitPrice *float64 `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
}

// CreateReturnInput opens a return against an order. Customer fields default to the order's.
type CreateReturnInput struct {
	OrderID       string              `json:"orderId" validate:"required"`
	Reason        entity.ReturnReason `json:"reason" validate:"required,oneof=DEFECTIVE WRONG_ITEM NOT_AS_DESCRIBED CHANGED_MIND SIZE_ISSUE QUALITY_ISSUE ARRIVED_LATE OTHER"`
	ReasonDetails string              `json:"reasonDetails,omitempty" validate:"max=5000"`
	CustomerEmail string              `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerName  string              `json:"customerName,omitempty" validate:"max=255"`
	CustomerPhone string              `json:"customerPhone,omitempty" validate:"max=50"`
	Items         []ReturnItemInput   `json:"items" validate:"required,min=1,dive"`
}

// ReturnItemUpdate records the inspection outcome of one returned item.
type ReturnItemUpdate struct {
	ID          string `json:"id" validate:"required"`
	Condition   string `json:"condition,omitempty" validate:"max=50"`
	Restockable *bool  `json:"restockable,omitempty"`
}

// UpdateReturnInput moves a return through its lifecycle. Empty fields are left as is.
type UpdateReturnInput struct {
	Status               entity.ReturnStatus `json:"status,omitempty"`
	RefundAmount         *float64            `json:"refundAmount,omitempty" validate:"omitempty,gte=0"`
	RefundMethod         string              `json:"refundMethod,omitempty" validate:"max=50"`
	ReturnLabelURL       string              `json:"returnLabelUrl,omitempty" validate:"omitempty,url"`
	ReturnTrackingNumber string              `json:"returnTrackingNumber,omitempty" validate:"max=255"`
	ReturnCarrier        string              `json:"returnCarrier,omitempty" validate:"max=50"`
	RejectionReason      string              `json:"rejectionReason,omitempty"`
	InternalNotes        *string             `json:"internalNotes,omitempty"`
	Items                []ReturnItemUpdate  `json:"items,omitempty" validate:"dive"`
}

// ReturnStats counts returns for the back-office list. Total is the filtered total.
type ReturnStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Received int64 `json:"received"`
	Refunded int64 `json:"refunded"`
}

// ReturnService manages return requests and puts returned goods back into stock.
type ReturnService struct {
	returns repository.ReturnRepository
	orders  repository.OrderRepository
	log     *zap.Logger
	now     func() time.Time
}

func NewReturnService(returns repository.ReturnRepository, orders repository.OrderRepository, log *zap.Logger) *ReturnService {
	return &ReturnService{returns: returns, orders: orders, log: log, now: time.Now}
}

// Create opens a PENDING return. Each item must be a line of the order and may not
// exceed the quantity bought. The refund amount is the sum of quantity times unit price.
func (s *ReturnService) Create(ctx context.Context, in CreateReturnInput) (*entity.Return, error) {
	if err := check(in, "Invalid return data"); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, orNotFound(err, "Order not found")
	}
	lines := make(map[string]entity.OrderItem, len(o.Items))
	for _, it := range o.Items {
		lines[it.ID] = it
	}

	rt := &entity.Return{
		OrderID:       o.ID,
		Status:        entity.ReturnPending,
		Reason:        in.Reason,
		ReasonDetails: strings.TrimSpace(in.ReasonDetails),
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
	}
	if rt.CustomerEmail == "" {
		rt.CustomerEmail = o.CustomerEmail
	}
	if rt.CustomerName == "" {
		rt.CustomerName = o.CustomerName
	}

	requested := make(map[string]int, len(in.Items))
	for _, item := range in.Items {
		line, ok := lines[item.OrderItemID]
		if !ok {
			return nil, invalid("Item %s is not part of order %s", item.OrderItemID, o.OrderNumber)
		}
		requested[line.ID] += item.Quantity
		if requested[line.ID] > line.Quantity {
			return nil, invalid("Cannot return more than %d of %s", line.Quantity, line.ProductName)
		}
		price := line.Price
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		rt.Items = append(rt.Items, entity.ReturnItem{
			OrderItemID: line.ID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			VariantName: line.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   price,
			Restockable: true,
		})
		rt.RefundAmount += float64(item.Quantity) * price
	}
	rt.RefundAmount = math.Round(rt.RefundAmount*100) / 100

	if err := s.returns.Create(ctx, rt); err != nil {
		return nil, err
	}
	s.log.Info("Return created",
		zap.String("return_id", rt.ID),
		zap.String("order_id", o.ID),
		zap.Float64("refund_amount", rt.RefundAmount))
	return rt, nil
}

// List returns returns newest first with counts per status.
func (s *ReturnService) List(ctx context.Context, f repository.ReturnFilter) ([]entity.Return, ReturnStats, error) {
	if f.Status == "all" {
		f.Status = ""
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, ReturnStats{}, invalid("Invalid status %s", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	returns, total, err := s.returns.List(ctx, f)
	if err != nil {
		return nil, ReturnStats{}, err
	}
	counts, err := s.returns.CountByStatus(ctx)
	if err != nil {
		return nil, ReturnStats{}, err
	}
	return returns, ReturnStats{
		Total:    total,
		Pending:  counts[entity.ReturnPending],
		Approved: counts[entity.ReturnApproved],
		Received: counts[entity.ReturnReceived],
		Refunded: counts[entity.ReturnRefunded],
	}, nil
}

func (s *ReturnService) Get(ctx context.Context, id string) (*entity.Return, error) {
	rt, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Return not found")
	}
	return rt, nil
}

// Update applies an inspection or status change. Entering APPROVED, RECEIVED, INSPECTING
// or REFUNDED stamps the matching time. The first time a return is RECEIVED or REFUNDED
// its restockable items go back into stock.
func (s *ReturnService) Update(ctx context.Context, id string, in UpdateReturnInput, actorID string) (*entity.Return, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, invalid("Invalid status %s", in.Status)
	}
	if err := check(in, "Invalid return data"); err != nil {
		return nil, err
	}
	rt, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Return not found")
	}

	now := s.now().UTC()
	if in.Status != "" && in.Status != rt.Status {
		rt.Status = in.Status
		switch in.Status {
		case entity.ReturnApproved:
			rt.ApprovedAt = &now
			if actorID != "" {
				rt.ApprovedBy = &actorID
			}
		case entity.ReturnReceived:
			rt.ReceivedAt = &now
		case entity.ReturnInspecting:
			rt.InspectedAt = &now
		case entity.ReturnRefunded:
			rt.RefundedAt = &now
		}
	}
	if in.RefundAmount != nil {
		rt.RefundAmount = *in.RefundAmount
	}
	setIf(&rt.RefundMethod, in.RefundMethod)
	setIf(&rt.ReturnLabelURL, in.ReturnLabelURL)
	setIf(&rt.ReturnTrackingNumber, in.ReturnTrackingNumber)
	setIf(&rt.ReturnCarrier, in.ReturnCarrier)
	setIf(&rt.RejectionReason, in.RejectionReason)
	if in.InternalNotes != nil {
		rt.InternalNotes = *in.InternalNotes
	}

	items := make(map[string]*entity.ReturnItem, len(rt.Items))
	for i := range rt.Items {
		items[rt.Items[i].ID] = &rt.Items[i]
	}
	for _, u := range in.Items {
		item, ok := items[u.ID]
		if !ok {
			return nil, invalid("Item %s is not part of this return", u.ID)
		}
		if u.Condition != "" {
			item.Condition = strings.TrimSpace(u.Condition)
		}
		if u.Restockable != nil {
			item.Restockable = *u.Restockable
		}
	}

	if err := s.returns.Update(ctx, rt); err != nil {
		return nil, orNotFound(err, "Return not found")
	}

	if rt.Status.Restocks() {
		var actor *string
		if actorID != "" {
			actor = &actorID
		}
		units, err := s.returns.Restock(ctx, rt.ID, actor, now)
		if err != nil {
			return nil, err
		}
		if units > 0 {
			s.log.Info("Return restocked", zap.String("return_id", rt.ID), zap.Int("units", units))
		}
	}
	return s.Get(ctx, rt.ID)
}

func (s *ReturnService) Delete(ctx context.Context, id string) error {
	if err := s.returns.Delete(ctx, id); err != nil {
		return orNotFound(err, "Return not found")
	}
	s.log.Info("Return deleted", zap.String("return_id", id))
	return nil
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
