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

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository backed by gorm.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Product{})
	if !f.IncludeInactive {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategorySlug != "" {
		q = q.Where("products.category_id IN (?)",
			r.db.Model(&entity.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.Featured != nil {
		q = q.Where("products.featured = ?", *f.Featured)
	}
	if f.Query != "" {
		s := like(strings.ToLower(f.Query))
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.sku) LIKE ?", s, s, s)
	}
	if f.InStock {
		q = q.Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.stock > 0)")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []entity.Product
	err := paginate(q.Preload("Category").Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("price ASC")
	}).Order("products.featured DESC, products.created_at DESC"), f.Page).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *productRepository) findOne(ctx context.Context, cond string, arg string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Preload("Category").Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("price ASC")
	}).First(&p, cond, arg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepository) FindVariant(ctx context.Context, id string) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	if err := r.db.WithContext(ctx).Preload("Product").First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(p).Omit(clause.Associations).Select(
			"name", "slug", "sku", "description", "base_price", "featured", "is_active",
			"conservation_percentage", "conservation_focus", "image_url", "category_id", "updated_at",
		).Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}

		keep := make([]string, 0, len(p.Variants))
		for i := range p.Variants {
			v := &p.Variants[i]
			v.ProductID = p.ID
			if v.ID == "" {
				if err := tx.Create(v).Error; err != nil {
					return err
				}
			} else {
				err := tx.Model(v).Select("name", "sku", "price", "stock", "size", "color", "material", "image_url", "updated_at").
					Where("product_id = ?", p.ID).Updates(v).Error
				if err != nil {
					return err
				}
			}
			keep = append(keep, v.ID)
		}

		del := tx.Where("product_id = ?", p.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		return del.Delete(&entity.ProductVariant{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", translate(err))
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ProductVariant{}, "product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete variants: %w", err)
		}
		res := tx.Delete(&entity.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *productRepository) CountVariants(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.ProductVariant{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count variants: %w", err)
	}
	return n, nil
}

func (r *productRepository) Seed(ctx context.Context, categories []entity.Category, products []entity.Product) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range categories {
			if err := tx.Create(&categories[i]).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", categories[i].Slug, err)
			}
		}
		for i := range products {
			if err := tx.Omit("Category").Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", products[i].Slug, err)
			}
		}
		return nil
	})
}
