package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/payment"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// AppliedDiscount is a code that passed validation and the amount it takes off.
type AppliedDiscount struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	Type           entity.DiscountType `json:"type"`
	Value          float64             `json:"value"`
	Description    string              `json:"description"`
	DiscountAmount float64             `json:"discountAmount"`
	FreeShipping   bool                `json:"freeShipping"`
}

// DiscountSummary is a discount code with usage statistics.
type DiscountSummary struct {
	entity.DiscountCode
	TotalUsages   int64  `json:"totalUsages"`
	RemainingUses *int64 `json:"remainingUses"`
}

// PublicDiscount is the storefront view of a usable code.
type PublicDiscount struct {
	Code              string              `json:"code"`
	Type              entity.DiscountType `json:"type"`
	Value             float64             `json:"value"`
	Description       string              `json:"description,omitempty"`
	ExpiresAt         *time.Time          `json:"expiresAt,omitempty"`
	MinPurchaseAmount *float64            `json:"minPurchaseAmount,omitempty"`
}

// DiscountInput is a discount code create or replace request.
type DiscountInput struct {
	Code                  string              `json:"code" validate:"required,min=3,max=50"`
	Type                  entity.DiscountType `json:"type" validate:"required,oneof=PERCENTAGE FIXED_AMOUNT FREE_SHIPPING BUY_X_GET_Y"`
	Value                 float64             `json:"value" validate:"gt=0"`
	Description           string              `json:"description,omitempty"`
	InternalNote          string              `json:"internalNote,omitempty"`
	UsageLimit            *int                `json:"usageLimit,omitempty" validate:"omitempty,gt=0"`
	UsageLimitPerCustomer *int                `json:"usageLimitPerCustomer,omitempty" validate:"omitempty,gt=0"`
	MinPurchaseAmount     *float64            `json:"minPurchaseAmount,omitempty" validate:"omitempty,gt=0"`
	StartsAt              *time.Time          `json:"startsAt,omitempty"`
	ExpiresAt             *time.Time          `json:"expiresAt,omitempty"`
	IsActive              *bool               `json:"isActive,omitempty"`
}

// Evaluate applies the discount decision list to d at now. usages is the code's
// redemption count so far.
func Evaluate(d *entity.DiscountCode, usages int64, subtotal float64, now time.Time) (*AppliedDiscount, error) {
	if subtotal < 0 {
		return nil, invalid("Subtotal cannot be negative")
	}
	if !d.IsActive {
		return nil, invalid("This discount code is no longer active")
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return nil, invalid("This discount code has expired")
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return nil, invalid("This discount code is not yet active")
	}
	if d.UsageLimit != nil && *d.UsageLimit > 0 && usages >= int64(*d.UsageLimit) {
		return nil, invalid("This discount code has reached its usage limit")
	}
	if d.MinPurchaseAmount != nil && *d.MinPurchaseAmount > 0 && subtotal < *d.MinPurchaseAmount {
		return nil, invalid("Minimum purchase of $%.2f required for this discount", *d.MinPurchaseAmount)
	}

	out := &AppliedDiscount{ID: d.ID, Code: d.Code, Type: d.Type, Value: d.Value}
	switch d.Type {
	case entity.DiscountPercentage:
		out.DiscountAmount = payment.Round2(subtotal * d.Value / 100)
		out.Description = fmt.Sprintf("%s%% off", trimFloat(d.Value))
	case entity.DiscountFixedAmount:
		out.DiscountAmount = min(d.Value, subtotal)
		out.Description = fmt.Sprintf("$%.2f off", d.Value)
	case entity.DiscountFreeShipping:
		out.FreeShipping = true
		out.Description = "Free shipping"
	default:
		out.Description = d.Description
		if out.Description == "" {
			out.Description = "Discount applied"
		}
	}
	return out, nil
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// DiscountService validates and manages discount codes.
type DiscountService struct {
	discounts repository.DiscountRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewDiscountService(discounts repository.DiscountRepository, log *zap.Logger) *DiscountService {
	return &DiscountService{discounts: discounts, log: log, now: time.Now}
}

// Validate looks up code case-insensitively and evaluates it against subtotal.
// A non-empty email also enforces the per-customer limit.
func (s *DiscountService) Validate(ctx context.Context, code string, subtotal float64, email string) (*AppliedDiscount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalid("Discount code is required")
	}
	d, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		return nil, orNotFound(err, "Invalid discount code")
	}

	var usages int64
	if d.UsageLimit != nil {
		if usages, err = s.discounts.CountUsages(ctx, d.ID); err != nil {
			return nil, err
		}
	}
	applied, err := Evaluate(d, usages, subtotal, s.now())
	if err != nil {
		return nil, err
	}

	if email != "" && d.UsageLimitPerCustomer != nil && *d.UsageLimitPerCustomer > 0 {
		n, err := s.discounts.CountCustomerUsages(ctx, d.ID, strings.ToLower(email))
		if err != nil {
			return nil, err
		}
		if n >= int64(*d.UsageLimitPerCustomer) {
			return nil, invalid("You have already used this discount code")
		}
	}
	return applied, nil
}

// Active lists up to three currently usable codes, highest value first.
func (s *DiscountService) Active(ctx context.Context) ([]PublicDiscount, error) {
	codes, err := s.discounts.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []PublicDiscount{}
	for _, d := range codes {
		if !d.IsActive || (d.StartsAt != nil && d.StartsAt.After(now)) || (d.ExpiresAt != nil && d.ExpiresAt.Before(now)) {
			continue
		}
		out = append(out, PublicDiscount{
			Code:              d.Code,
			Type:              d.Type,
			Value:             d.Value,
			Description:       d.Description,
			ExpiresAt:         d.ExpiresAt,
			MinPurchaseAmount: d.MinPurchaseAmount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > 3 {
		out = out[:3]
	}
	return out, nil
}

// List returns codes filtered by status (active, expired or all) with usage counts.
func (s *DiscountService) List(ctx context.Context, status string) ([]DiscountSummary, error) {
	codes, err := s.discounts.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.discounts.UsageCounts(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []DiscountSummary{}
	for _, d := range codes {
		expired := d.ExpiresAt != nil && d.ExpiresAt.Before(now)
		switch status {
		case "active":
			if !d.IsActive || expired {
				continue
			}
		case "expired":
			if !expired {
				continue
			}
		}
		out = append(out, summarize(d, counts[d.ID]))
	}
	return out, nil
}

func summarize(d entity.DiscountCode, used int64) DiscountSummary {
	sum := DiscountSummary{DiscountCode: d, TotalUsages: used}
	if d.UsageLimit != nil {
		remaining := max(int64(*d.UsageLimit)-used, 0)
		sum.RemainingUses = &remaining
	}
	return sum
}

func (s *DiscountService) Get(ctx context.Context, id string) (*DiscountSummary, error) {
	d, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Discount code not found")
	}
	used, err := s.discounts.CountUsages(ctx, id)
	if err != nil {
		return nil, err
	}
	sum := summarize(*d, used)
	return &sum, nil
}

func (s *DiscountService) checkInput(in *DiscountInput) error {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if err := check(*in, "Invalid discount data"); err != nil {
		return err
	}
	if in.Type == entity.DiscountPercentage && in.Value > 100 {
		return invalid("Percentage discount cannot exceed 100%%")
	}
	if in.StartsAt != nil && in.ExpiresAt != nil && !in.ExpiresAt.After(*in.StartsAt) {
		return invalid("Expiry must be after the start date")
	}
	return nil
}

func (in DiscountInput) apply(d *entity.DiscountCode) {
	d.Code = in.Code
	d.Type = in.Type
	d.Value = in.Value
	d.Description = in.Description
	d.InternalNote = in.InternalNote
	d.UsageLimit = in.UsageLimit
	d.UsageLimitPerCustomer = in.UsageLimitPerCustomer
	d.MinPurchaseAmount = in.MinPurchaseAmount
	d.StartsAt = in.StartsAt
	d.ExpiresAt = in.ExpiresAt
	d.IsActive = in.IsActive == nil || *in.IsActive
}

func (s *DiscountService) Create(ctx context.Context, in DiscountInput, createdBy string) (*entity.DiscountCode, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.discounts.FindByCode(ctx, in.Code); err == nil {
		return nil, conflict("Discount code already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	d := &entity.DiscountCode{CreatedBy: createdBy}
	in.apply(d)
	if err := s.discounts.Create(ctx, d); err != nil {
		return nil, orConflict(err, "Discount code already exists")
	}
	s.log.Info("Discount code created", zap.String("code", d.Code), zap.String("created_by", createdBy))
	return d, nil
}

func (s *DiscountService) Update(ctx context.Context, id string, in DiscountInput) (*entity.DiscountCode, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}
	d, err := s.discounts.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Discount code not found")
	}
	in.apply(d)
	if err := s.discounts.Update(ctx, d); err != nil {
		return nil, orConflict(orNotFound(err, "Discount code not found"), "Discount code already exists")
	}
	return d, nil
}

func (s *DiscountService) Delete(ctx context.Context, id string) error {
	return orNotFound(s.discounts.Delete(ctx, id), "Discount code not found")
}
