package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository backed by gorm.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *entity.ProductReview) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err))
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id string) (*entity.ProductReview, error) {
	var rv entity.ProductReview
	if err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *reviewRepository) List(ctx context.Context, f repository.ReviewFilter) ([]entity.ProductReview, error) {
	q := r.db.WithContext(ctx).Preload("Product")
	if f.ProductID != "" {
		q = q.Where("product_id = ?", f.ProductID)
	}
	switch f.Status {
	case "pending":
		q = q.Where("is_approved = ? AND is_rejected = ?", false, false)
	case "approved":
		q = q.Where("is_approved = ?", true)
	case "rejected":
		q = q.Where("is_rejected = ?", true)
	}
	if f.Rating > 0 {
		q = q.Where("rating = ?", f.Rating)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var reviews []entity.ProductReview
	if err := q.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *entity.ProductReview) error {
	res := r.db.WithContext(ctx).Model(rv).Omit(clause.Associations).
		Select("is_approved", "is_rejected", "is_verified", "updated_at").Updates(rv)
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.ProductReview{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) Rating(ctx context.Context, productID string) (float64, int64, error) {
	var row struct {
		Avg float64
		N   int64
	}
	err := r.db.WithContext(ctx).Model(&entity.ProductReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS n").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return row.Avg, row.N, nil
}

func (r *reviewRepository) Summary(ctx context.Context) (repository.ReviewSummary, error) {
	var s repository.ReviewSummary
	err := r.db.WithContext(ctx).Model(&entity.ProductReview{}).Select(
		"COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN is_approved THEN 1 ELSE 0 END), 0) AS approved, " +
			"COALESCE(SUM(CASE WHEN is_rejected THEN 1 ELSE 0 END), 0) AS rejected, " +
			"COALESCE(SUM(CASE WHEN NOT is_approved AND NOT is_rejected THEN 1 ELSE 0 END), 0) AS pending",
	).Scan(&s).Error
	if err != nil {
		return s, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	return s, nil
}
