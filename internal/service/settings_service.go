package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// SettingsInput replaces the editable site settings.
type SettingsInput struct {
	SiteName              string  `json:"siteName" validate:"required,max=255"`
	Logo                  string  `json:"logo,omitempty"`
	PrimaryColor          string  `json:"primaryColor" validate:"required,hexcolor"`
	ContactEmail          string  `json:"contactEmail,omitempty" validate:"omitempty,email"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold" validate:"gte=0"`
	FlatShipping          float64 `json:"flatShipping" validate:"gte=0"`
	TaxRate               float64 `json:"taxRate" validate:"gte=0,lt=1"`
}

// SettingsService reads and writes the singleton settings row.
type SettingsService struct {
	settings repository.SettingsRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewSettingsService(settings repository.SettingsRepository, log *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, log: log, now: time.Now}
}

func (s *SettingsService) Get(ctx context.Context) (*entity.SiteSettings, error) {
	return s.settings.Get(ctx)
}

func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (*entity.SiteSettings, error) {
	if strings.TrimSpace(in.SiteName) == "" || in.PrimaryColor == "" {
		return nil, invalid("Site name and primary color are required")
	}
	if err := check(in, "Invalid settings"); err != nil {
		return nil, err
	}
	cur, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	cur.SiteName = strings.TrimSpace(in.SiteName)
	cur.Logo = in.Logo
	cur.PrimaryColor = in.PrimaryColor
	cur.ContactEmail = in.ContactEmail
	cur.FreeShippingThreshold = in.FreeShippingThreshold
	cur.FlatShipping = in.FlatShipping
	cur.TaxRate = in.TaxRate
	cur.UpdatedAt = s.now().UTC()
	if err := s.settings.Save(ctx, cur); err != nil {
		return nil, err
	}
	s.log.Info("Site settings updated")
	return cur, nil
}
