package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository creates a new SubscriberRepository backed by gorm.
func NewSubscriberRepository(db *gorm.DB) repository.SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) FindByEmail(ctx context.Context, email string) (*entity.NewsletterSubscriber, error) {
	var s entity.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&s, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *subscriberRepository) FindByID(ctx context.Context, id string) (*entity.NewsletterSubscriber, error) {
	var s entity.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *subscriberRepository) List(ctx context.Context, active *bool) ([]entity.NewsletterSubscriber, error) {
	q := r.db.WithContext(ctx)
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var subs []entity.NewsletterSubscriber
	if err := q.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	return subs, nil
}

func (r *subscriberRepository) Create(ctx context.Context, s *entity.NewsletterSubscriber) error {
	s.Email = strings.ToLower(s.Email)
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create subscriber: %w", translate(err))
	}
	return nil
}

func (r *subscriberRepository) Update(ctx context.Context, s *entity.NewsletterSubscriber) error {
	res := r.db.WithContext(ctx).Model(s).
		Select("name", "is_active", "unsubscribed_at", "updated_at").Updates(s)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscriber: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *subscriberRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.NewsletterSubscriber{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscriber: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *subscriberRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.NewsletterSubscriber{}).Where("is_active = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return n, nil
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new CampaignRepository backed by gorm.
func NewCampaignRepository(db *gorm.DB) repository.CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) List(ctx context.Context) ([]entity.EmailCampaign, error) {
	var cs []entity.EmailCampaign
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cs).Error; err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	return cs, nil
}

func (r *campaignRepository) FindByID(ctx context.Context, id string) (*entity.EmailCampaign, error) {
	var c entity.EmailCampaign
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *campaignRepository) Create(ctx context.Context, c *entity.EmailCampaign) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

func (r *campaignRepository) Update(ctx context.Context, c *entity.EmailCampaign) error {
	res := r.db.WithContext(ctx).Model(c).
		Select("subject", "preheader", "content", "status", "sent_at", "sent_count", "failed_count", "updated_at").
		Updates(c)
	if res.Error != nil {
		return fmt.Errorf("failed to update campaign: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *campaignRepository) Claim(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.EmailCampaign{}).
		Where("id = ? AND status = ?", id, entity.CampaignDraft).
		Updates(map[string]any{"status": entity.CampaignSending, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to claim campaign: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *campaignRepository) Release(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&entity.EmailCampaign{}).
		Where("id = ? AND status = ?", id, entity.CampaignSending).
		Updates(map[string]any{"status": entity.CampaignDraft, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("failed to release campaign: %w", err)
	}
	return nil
}

type socialPostRepository struct {
	db *gorm.DB
}

// NewSocialPostRepository creates a new SocialPostRepository backed by gorm.
func NewSocialPostRepository(db *gorm.DB) repository.SocialPostRepository {
	return &socialPostRepository{db: db}
}

func (r *socialPostRepository) Create(ctx context.Context, p *entity.SocialMediaPost) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create social post: %w", err)
	}
	return nil
}

func (r *socialPostRepository) List(ctx context.Context, statuses []string, limit int) ([]entity.SocialMediaPost, error) {
	q := r.db.WithContext(ctx)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []entity.SocialMediaPost
	if err := q.Order("scheduled_at ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to query social posts: %w", err)
	}
	return posts, nil
}

func (r *socialPostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]entity.SocialMediaPost, error) {
	var posts []entity.SocialMediaPost
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", entity.PostScheduled, now).
		Order("scheduled_at ASC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due social posts: %w", err)
	}
	return posts, nil
}

func (r *socialPostRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.SocialMediaPost{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update social post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
