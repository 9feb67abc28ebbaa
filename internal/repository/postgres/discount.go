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

type discountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository creates a new DiscountRepository backed by gorm.
func NewDiscountRepository(db *gorm.DB) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (*entity.DiscountCode, error) {
	var d entity.DiscountCode
	if err := r.db.WithContext(ctx).First(&d, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *discountRepository) FindByID(ctx context.Context, id string) (*entity.DiscountCode, error) {
	var d entity.DiscountCode
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *discountRepository) List(ctx context.Context) ([]entity.DiscountCode, error) {
	var codes []entity.DiscountCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to query discount codes: %w", err)
	}
	return codes, nil
}

func (r *discountRepository) Create(ctx context.Context, d *entity.DiscountCode) error {
	d.Code = strings.ToUpper(d.Code)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create discount code: %w", translate(err))
	}
	return nil
}

func (r *discountRepository) Update(ctx context.Context, d *entity.DiscountCode) error {
	d.Code = strings.ToUpper(d.Code)
	res := r.db.WithContext(ctx).Model(d).Omit(clause.Associations).Select(
		"code", "type", "value", "description", "internal_note", "usage_limit",
		"usage_limit_per_customer", "min_purchase_amount", "starts_at", "expires_at",
		"is_active", "updated_at",
	).Updates(d)
	if res.Error != nil {
		return fmt.Errorf("failed to update discount code: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *discountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.DiscountUsage{}, "discount_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete discount usages: %w", err)
		}
		res := tx.Delete(&entity.DiscountCode{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete discount code: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *discountRepository) CountUsages(ctx context.Context, discountID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.DiscountUsage{}).Where("discount_id = ?", discountID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count discount usages: %w", err)
	}
	return n, nil
}

func (r *discountRepository) CountCustomerUsages(ctx context.Context, discountID, email string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.DiscountUsage{}).
		Where("discount_id = ? AND LOWER(customer_email) = ?", discountID, strings.ToLower(email)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count customer discount usages: %w", err)
	}
	return n, nil
}

func (r *discountRepository) UsageCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		DiscountID string
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&entity.DiscountUsage{}).
		Select("discount_id, COUNT(*) AS n").Group("discount_id").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count discount usages: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.DiscountID] = row.N
	}
	return counts, nil
}
