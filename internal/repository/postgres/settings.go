package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// DefaultSettings is the row created on first read.
func DefaultSettings() entity.SiteSettings {
	return entity.SiteSettings{
		ID:                    entity.SettingsID,
		SiteName:              "La Pesqueria Outfitters",
		PrimaryColor:          "#0e7490",
		ContactEmail:          "contact@lapesqueria.com",
		FreeShippingThreshold: 75,
		FlatShipping:          5.99,
		TaxRate:               0.0825,
	}
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository backed by gorm.
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.SiteSettings, error) {
	var s entity.SiteSettings
	err := r.db.WithContext(ctx).First(&s, "id = ?", entity.SettingsID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s = DefaultSettings()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s *entity.SiteSettings) error {
	s.ID = entity.SettingsID
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *settingsRepository) TouchSync(ctx context.Context, at time.Time) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&entity.SiteSettings{}).
		Where("id = ?", entity.SettingsID).Update("last_sync_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to stamp sync time: %w", err)
	}
	return nil
}
