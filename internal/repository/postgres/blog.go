package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new BlogRepository backed by gorm.
func NewBlogRepository(db *gorm.DB) repository.BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) List(ctx context.Context, status entity.PostStatus, p repository.Page) ([]entity.BlogPost, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.BlogPost{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count blog posts: %w", err)
	}

	order := "created_at DESC"
	if status == entity.PostPublished {
		order = "published_at DESC"
	}
	var posts []entity.BlogPost
	if err := paginate(q.Order(order), p).Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query blog posts: %w", err)
	}
	return posts, total, nil
}

func (r *blogRepository) FindByID(ctx context.Context, id string) (*entity.BlogPost, error) {
	var b entity.BlogPost
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *blogRepository) FindBySlug(ctx context.Context, slug string) (*entity.BlogPost, error) {
	var b entity.BlogPost
	if err := r.db.WithContext(ctx).First(&b, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *blogRepository) Create(ctx context.Context, b *entity.BlogPost) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create blog post: %w", translate(err))
	}
	return nil
}

func (r *blogRepository) Update(ctx context.Context, b *entity.BlogPost) error {
	res := r.db.WithContext(ctx).Model(b).Select(
		"title", "slug", "excerpt", "content", "cover_image", "tags", "status", "published_at", "updated_at",
	).Updates(b)
	if res.Error != nil {
		return fmt.Errorf("failed to update blog post: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete blog post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
