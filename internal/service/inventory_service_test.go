package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func TestNextStock(t *testing.T) {
	tests := []struct {
		name    string
		current int
		typ     entity.AdjustmentType
		qty     int
		want    int
		wantErr string
	}{
		{"restock adds", 5, entity.AdjustRestock, 10, 15, ""},
		{"adjustment sets", 5, entity.AdjustAdjustment, 2, 2, ""},
		{"adjustment to zero", 5, entity.AdjustAdjustment, 0, 0, ""},
		{"sale subtracts", 5, entity.AdjustSale, 5, 0, ""},
		{"sale beyond stock", 3, entity.AdjustSale, 5, 0, "Stock cannot be negative"},
		{"negative adjustment", 3, entity.AdjustAdjustment, -1, 0, "Stock cannot be negative"},
		{"unknown type", 3, "RETURN", 1, 0, "Invalid adjustment type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStock(tt.current, tt.typ, tt.qty)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInventoryService_Adjust(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := seedProduct(t, db, "hoodie", 45, 3)
	variantID := p.Variants[0].ID
	svc := NewInventoryService(postgres.NewInventoryRepository(db), nopLogger(), 10)

	res, err := svc.Adjust(ctx, AdjustInput{VariantID: variantID, Type: entity.AdjustRestock, Quantity: 7}, "admin-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 10, res.NewStock)
	assert.Equal(t, "RESTOCK adjustment", res.Transaction.Notes)

	_, err = svc.Adjust(ctx, AdjustInput{VariantID: variantID, Type: entity.AdjustSale, Quantity: 11}, "admin-1")
	assert.EqualError(t, err, "Stock cannot be negative")

	res, err = svc.Adjust(ctx, AdjustInput{VariantID: variantID, Type: entity.AdjustSale, Quantity: 0}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 10, res.NewStock)
	require.NotNil(t, res.Transaction.Variant)
	require.NotNil(t, res.Transaction.Variant.Product)
	assert.Equal(t, "Product hoodie", res.Transaction.Variant.Product.Name)
	assert.Equal(t, 10, res.Transaction.Variant.Stock)

	res, err = svc.Adjust(ctx, AdjustInput{VariantID: variantID, Type: entity.AdjustAdjustment, Quantity: 2, Notes: "cycle count"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewStock)

	_, err = svc.Adjust(ctx, AdjustInput{VariantID: "missing", Type: entity.AdjustRestock, Quantity: 1}, "admin-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Adjust(ctx, AdjustInput{VariantID: "missing", Type: entity.AdjustSale, Quantity: 0}, "admin-1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "unknown variant is 404 whatever the quantity")

	txns, err := svc.Transactions(ctx, variantID, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	alerts, err := svc.Alerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, alerts.Threshold)
	require.Len(t, alerts.LowStock, 1)
	assert.Equal(t, variantID, alerts.LowStock[0].ID)
}

func TestInventoryService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedProduct(t, db, "tee", 25, 0)
	seedProduct(t, db, "cap", 20, 50)
	svc := NewInventoryService(postgres.NewInventoryRepository(db), nopLogger(), 10)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Product", "Variant", "SKU", "Size", "Color", "Price", "Stock", "Status"}, rows[0])

	statuses := map[string]string{}
	for _, r := range rows[1:] {
		statuses[r[2]] = r[7]
	}
	assert.Equal(t, "Out of Stock", statuses["SKU-tee-M"])
	assert.Equal(t, "In Stock", statuses["SKU-cap-M"])
}
