package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func newCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCatalogService(postgres.NewProductRepository(db), postgres.NewCategoryRepository(db), nil, nopLogger())
	return svc, db
}

func productInput(slug, sku string) ProductInput {
	return ProductInput{
		Name:      "Tarpon Tee",
		Slug:      slug,
		SKU:       sku,
		BasePrice: 28,
		Variants:  []VariantInput{{Name: "M", SKU: sku + "-M", Price: 28, Stock: 4}},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestCatalogService_CreateProductValidates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogService(t)

	tests := []struct {
		name  string
		edit  func(*ProductInput)
		field string
	}{
		{"uppercase slug", func(in *ProductInput) { in.Slug = "Tarpon-Tee" }, "slug"},
		{"slug with spaces", func(in *ProductInput) { in.Slug = "tarpon tee" }, "slug"},
		{"zero base price", func(in *ProductInput) { in.BasePrice = 0 }, "basePrice"},
		{"negative base price", func(in *ProductInput) { in.BasePrice = -1 }, "basePrice"},
		{"no variants", func(in *ProductInput) { in.Variants = nil }, "variants"},
		{"empty variants", func(in *ProductInput) { in.Variants = []VariantInput{} }, "variants"},
		{"conservation over 100", func(in *ProductInput) { in.ConservationPercentage = floatPtr(101) }, "conservationPercentage"},
		{"conservation negative", func(in *ProductInput) { in.ConservationPercentage = floatPtr(-1) }, "conservationPercentage"},
		{"variant without price", func(in *ProductInput) { in.Variants[0].Price = 0 }, "variants[0].price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := productInput("tarpon-tee", "TT")
			tt.edit(&in)
			_, err := svc.CreateProduct(ctx, in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "Invalid product data", ve.Message)
			fields := make([]string, 0, len(ve.Details))
			for _, d := range ve.Details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogService(t)

	p, err := svc.CreateProduct(ctx, productInput("tarpon-tee", "TT"))
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.InDelta(t, DefaultConservationPercentage, p.ConservationPercentage, 0.001)
	require.Len(t, p.Variants, 1)

	for _, bound := range []float64{0, 100} {
		in := productInput("bound-"+trimFloat(bound), "B"+trimFloat(bound))
		in.ConservationPercentage = floatPtr(bound)
		_, err := svc.CreateProduct(ctx, in)
		assert.NoError(t, err, "conservation %v is in range", bound)
	}

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"duplicate slug", productInput("tarpon-tee", "OTHER")},
		{"duplicate product sku", productInput("other-tee", "TT")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in)
			var ce *ConflictError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "A product or variant with this slug or SKU already exists", ce.Message)
		})
	}

	in := productInput("twin-sku", "TW")
	in.Variants = append(in.Variants, VariantInput{Name: "L", SKU: "tw-m", Price: 28})
	_, err = svc.CreateProduct(ctx, in)
	assert.EqualError(t, err, "Duplicate variant SKU tw-m")

	in = productInput("no-category", "NC")
	in.CategoryID = "missing"
	_, err = svc.CreateProduct(ctx, in)
	assert.EqualError(t, err, "Category does not exist")
}

func TestCatalogService_InactiveHiddenFromStorefront(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogService(t)

	in := productInput("retired-tee", "RT")
	in.IsActive = new(bool)
	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)

	_, err = svc.Product(ctx, p.Slug)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := svc.AdminProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCatalogService_DeleteProductWithHistory(t *testing.T) {
	ctx := context.Background()
	svc, db := newCatalogService(t)

	p, err := svc.CreateProduct(ctx, productInput("sold-tee", "ST"))
	require.NoError(t, err)
	inventory := NewInventoryService(postgres.NewInventoryRepository(db), nopLogger(), 10)
	_, err = inventory.Adjust(ctx, AdjustInput{VariantID: p.Variants[0].ID, Type: entity.AdjustRestock, Quantity: 5}, "")
	require.NoError(t, err)
	reviews := NewReviewService(postgres.NewReviewRepository(db), postgres.NewProductRepository(db), nopLogger())
	_, err = reviews.Submit(ctx, p.ID, ReviewInput{Rating: 5, Name: "Ana", Comment: "Soft"}, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.AdminProduct(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), repository.ErrNotFound)
}

func TestCatalogService_UpdateProductDropsVariantWithHistory(t *testing.T) {
	ctx := context.Background()
	svc, db := newCatalogService(t)

	p, err := svc.CreateProduct(ctx, productInput("hat", "HAT"))
	require.NoError(t, err)
	inventory := NewInventoryService(postgres.NewInventoryRepository(db), nopLogger(), 10)
	_, err = inventory.Adjust(ctx, AdjustInput{VariantID: p.Variants[0].ID, Type: entity.AdjustSale, Quantity: 1}, "")
	require.NoError(t, err)

	in := productInput("hat", "HAT")
	in.Variants = []VariantInput{{Name: "OS", SKU: "HAT-OS", Price: 30, Stock: 2}}
	got, err := svc.UpdateProduct(ctx, p.ID, in)
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, "HAT-OS", got.Variants[0].SKU)
}

func TestCatalogService_Categories(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalogService(t)

	_, err := svc.CreateCategory(ctx, CategoryInput{Name: "Hats", Slug: "Hats!"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Hats", Slug: "hats"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "More hats", Slug: "hats"})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	in := productInput("cap", "CAP")
	in.CategoryID = c.ID
	p, err := svc.CreateProduct(ctx, in)
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, c.ID)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Cannot delete a category that still has products", ce.Message)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.NoError(t, svc.DeleteCategory(ctx, c.ID))
}

func TestCatalogService_UploadUnconfigured(t *testing.T) {
	svc, _ := newCatalogService(t)
	_, err := svc.UploadImage(context.Background(), "hat.png", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
