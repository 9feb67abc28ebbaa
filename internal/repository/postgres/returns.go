package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new ReturnRepository backed by gorm.
func NewReturnRepository(db *gorm.DB) repository.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, rt *entity.Return) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	rt.ReturnNumber = "RMA-" + entity.ShortID(rt.ID)
	if rt.Status == "" {
		rt.Status = entity.ReturnPending
	}
	if err := r.db.WithContext(ctx).Omit("Order").Create(rt).Error; err != nil {
		return fmt.Errorf("failed to create return: %w", translate(err))
	}
	return nil
}

func (r *returnRepository) FindByID(ctx context.Context, id string) (*entity.Return, error) {
	var rt entity.Return
	err := r.db.WithContext(ctx).Preload("Items").Preload("Order.Items").First(&rt, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rt, nil
}

func (r *returnRepository) List(ctx context.Context, f repository.ReturnFilter) ([]entity.Return, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Return{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		s := like(strings.ToLower(f.Query))
		q = q.Where("LOWER(return_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ? OR order_id IN (?)",
			s, s, s, r.db.Model(&entity.Order{}).Select("id").Where("LOWER(order_number) LIKE ?", s))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count returns: %w", err)
	}

	var returns []entity.Return
	if err := paginate(q.Preload("Items").Preload("Order").Order("created_at DESC"), f.Page).Find(&returns).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query returns: %w", err)
	}
	return returns, total, nil
}

func (r *returnRepository) CountByStatus(ctx context.Context) (map[entity.ReturnStatus]int64, error) {
	var rows []struct {
		Status entity.ReturnStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Return{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count returns by status: %w", err)
	}
	counts := make(map[entity.ReturnStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func (r *returnRepository) Update(ctx context.Context, rt *entity.Return) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(rt).Omit(clause.Associations).Select(
			"status", "refund_amount", "refund_method", "return_label_url", "return_tracking_number",
			"return_carrier", "rejection_reason", "internal_notes", "approved_at", "approved_by",
			"received_at", "inspected_at", "refunded_at", "updated_at",
		).Updates(rt)
		if res.Error != nil {
			return fmt.Errorf("failed to update return: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		for i := range rt.Items {
			item := &rt.Items[i]
			err := tx.Model(item).Where("return_id = ?", rt.ID).
				Select("condition", "restockable", "updated_at").Updates(item).Error
			if err != nil {
				return fmt.Errorf("failed to update return item: %w", err)
			}
		}
		return nil
	})
}

func (r *returnRepository) Restock(ctx context.Context, id string, userID *string, at time.Time) (int, error) {
	var units int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Return{}).Where("id = ? AND restocked_at IS NULL", id).Update("restocked_at", at)
		if res.Error != nil {
			return fmt.Errorf("failed to mark return restocked: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if !exists(tx, &entity.Return{}, id) {
				return repository.ErrNotFound
			}
			return nil
		}

		var rt entity.Return
		if err := tx.Select("id", "return_number").First(&rt, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		var items []entity.ReturnItem
		if err := tx.Where("return_id = ? AND restockable = ?", id, true).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load return items: %w", err)
		}
		for _, item := range items {
			res := tx.Model(&entity.ProductVariant{}).Where("id = ?", item.VariantID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to restock %s: %w", item.VariantID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			txn := entity.InventoryTransaction{
				VariantID: item.VariantID,
				Type:      entity.AdjustRestock,
				Quantity:  item.Quantity,
				Notes:     "Return " + rt.ReturnNumber,
				UserID:    userID,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return fmt.Errorf("failed to record restock: %w", err)
			}
			units += item.Quantity
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return units, nil
}

func (r *returnRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ReturnItem{}, "return_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete return items: %w", err)
		}
		res := tx.Delete(&entity.Return{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete return: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
