package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	minimum := 50.0

	tests := []struct {
		name     string
		code     entity.DiscountCode
		usages   int64
		subtotal float64
		amount   float64
		errMsg   string
	}{
		{
			name:     "percentage",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 15, IsActive: true},
			subtotal: 50,
			amount:   7.5,
		},
		{
			name:     "fixed never exceeds subtotal",
			code:     entity.DiscountCode{Type: entity.DiscountFixedAmount, Value: 100, IsActive: true},
			subtotal: 30,
			amount:   30,
		},
		{
			name:     "inactive",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10},
			subtotal: 50,
			errMsg:   "This discount code is no longer active",
		},
		{
			name:     "expired",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true, ExpiresAt: &past},
			subtotal: 50,
			errMsg:   "This discount code has expired",
		},
		{
			name:     "not started",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true, StartsAt: &future},
			subtotal: 50,
			errMsg:   "This discount code is not yet active",
		},
		{
			name:     "usage limit reached",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true, UsageLimit: intPtr(3)},
			usages:   3,
			subtotal: 50,
			errMsg:   "This discount code has reached its usage limit",
		},
		{
			name:     "below minimum",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true, MinPurchaseAmount: &minimum},
			subtotal: 49.99,
			errMsg:   "Minimum purchase of $50.00 required for this discount",
		},
		{
			name:     "expired wins over usage limit",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true, ExpiresAt: &past, UsageLimit: intPtr(1)},
			usages:   5,
			subtotal: 50,
			errMsg:   "This discount code has expired",
		},
		{
			name:     "negative subtotal fixed",
			code:     entity.DiscountCode{Type: entity.DiscountFixedAmount, Value: 10, IsActive: true},
			subtotal: -50,
			errMsg:   "Subtotal cannot be negative",
		},
		{
			name:     "negative subtotal percentage",
			code:     entity.DiscountCode{Type: entity.DiscountPercentage, Value: 10, IsActive: true},
			subtotal: -50,
			errMsg:   "Subtotal cannot be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(&tt.code, tt.usages, tt.subtotal, now)
			if tt.errMsg != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.errMsg, ve.Message)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.amount, got.DiscountAmount, 0.001)
		})
	}
}

func TestEvaluate_FreeShippingAndOtherTypes(t *testing.T) {
	now := time.Now()
	got, err := Evaluate(&entity.DiscountCode{Type: entity.DiscountFreeShipping, Value: 1, IsActive: true}, 0, 20, now)
	require.NoError(t, err)
	assert.True(t, got.FreeShipping)
	assert.Zero(t, got.DiscountAmount)
	assert.Equal(t, "Free shipping", got.Description)

	got, err = Evaluate(&entity.DiscountCode{Type: entity.DiscountBuyXGetY, Value: 1, IsActive: true, Description: "Buy 2 get 1"}, 0, 20, now)
	require.NoError(t, err)
	assert.Zero(t, got.DiscountAmount)
	assert.Equal(t, "Buy 2 get 1", got.Description)
}

func TestDiscountService_ValidateAndManage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewDiscountService(postgres.NewDiscountRepository(db), nopLogger())

	d, err := svc.Create(ctx, DiscountInput{Code: " reel15 ", Type: entity.DiscountPercentage, Value: 15}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "REEL15", d.Code)
	assert.True(t, d.IsActive)

	_, err = svc.Create(ctx, DiscountInput{Code: "REEL15", Type: entity.DiscountFixedAmount, Value: 5}, "admin-1")
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Discount code already exists", ce.Message)

	_, err = svc.Create(ctx, DiscountInput{Code: "TOOMUCH", Type: entity.DiscountPercentage, Value: 150}, "admin-1")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Percentage discount cannot exceed 100%", ve.Message)

	applied, err := svc.Validate(ctx, "reel15", 80, "")
	require.NoError(t, err)
	assert.InDelta(t, 12, applied.DiscountAmount, 0.001)
	assert.Equal(t, "15% off", applied.Description)

	_, err = svc.Validate(ctx, "NOPE", 80, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Validate(ctx, "  ", 80, "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Discount code is required", ve.Message)

	list, err := svc.List(ctx, "active")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].TotalUsages)
	assert.Nil(t, list[0].RemainingUses)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "REEL15", active[0].Code)

	require.NoError(t, svc.Delete(ctx, d.ID))
	assert.ErrorIs(t, svc.Delete(ctx, d.ID), repository.ErrNotFound)
}

func TestDiscountService_PerCustomerLimit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := postgres.NewDiscountRepository(db)
	svc := NewDiscountService(repo, nopLogger())

	d, err := svc.Create(ctx, DiscountInput{Code: "ONCE", Type: entity.DiscountFixedAmount, Value: 5, UsageLimitPerCustomer: intPtr(1)}, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(&entity.DiscountUsage{DiscountID: d.ID, OrderID: "o1", CustomerEmail: "angler@example.com", Amount: 5}).Error)

	_, err = svc.Validate(ctx, "once", 40, "Angler@Example.com")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "You have already used this discount code", ve.Message)

	_, err = svc.Validate(ctx, "once", 40, "someone@example.com")
	assert.NoError(t, err)
}
