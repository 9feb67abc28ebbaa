package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new InventoryRepository backed by gorm.
func NewInventoryRepository(db *gorm.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Adjust(ctx context.Context, variantID string, apply func(current int) (int, error), txn *entity.InventoryTransaction) (int, error) {
	var newStock int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v entity.ProductVariant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, "id = ?", variantID).Error
		if err != nil {
			return translate(err)
		}

		next, err := apply(v.Stock)
		if err != nil {
			return err
		}
		if err := tx.Model(&v).Update("stock", next).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		txn.VariantID = variantID
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("failed to record inventory transaction: %w", err)
		}
		if err := tx.Preload("Variant.Product").First(txn, "id = ?", txn.ID).Error; err != nil {
			return fmt.Errorf("failed to load inventory transaction: %w", err)
		}
		newStock = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

func (r *inventoryRepository) ListVariants(ctx context.Context, f repository.VariantFilter) ([]entity.ProductVariant, error) {
	q := r.db.WithContext(ctx).Model(&entity.ProductVariant{}).Preload("Product")
	if f.MaxStock != nil {
		q = q.Where("stock <= ?", *f.MaxStock)
	}
	if f.Query != "" {
		s := like(strings.ToLower(f.Query))
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", s, s)
	}

	var variants []entity.ProductVariant
	if err := q.Order("stock ASC, sku ASC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	return variants, nil
}

func (r *inventoryRepository) ListTransactions(ctx context.Context, variantID string, limit int) ([]entity.InventoryTransaction, error) {
	q := r.db.WithContext(ctx).Preload("Variant").Preload("Variant.Product")
	if variantID != "" {
		q = q.Where("variant_id = ?", variantID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var txns []entity.InventoryTransaction
	if err := q.Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to query inventory transactions: %w", err)
	}
	return txns, nil
}

func (r *inventoryRepository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count inventory transactions: %w", err)
	}
	return n, nil
}

func (r *inventoryRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.ProductVariant{}).Where("stock = 0").Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count out of stock variants: %w", err)
	}
	return n, nil
}
