package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/ai"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// DefaultTone is used when a social post request names no tone.
const DefaultTone = "enthusiastic"

// dueBatch bounds how many posts one scheduler tick dispatches.
const dueBatch = 50

var optimalHours = map[entity.Platform][]int{
	entity.PlatformInstagram: {9, 14, 19},
	entity.PlatformFacebook:  {10, 13, 20},
	entity.PlatformPinterest: {8, 15, 21},
	entity.PlatformTwitter:   {8, 12, 17},
}

// NextOptimalTime returns the next engagement hour for platform after now, rolling
// over to the first hour of the next day.
func NextOptimalTime(platform entity.Platform, now time.Time) time.Time {
	hours, ok := optimalHours[platform]
	if !ok {
		hours = optimalHours[entity.PlatformInstagram]
	}
	day := now
	next := hours[0]
	found := false
	for _, h := range hours {
		if h > now.Hour() {
			next, found = h, true
			break
		}
	}
	if !found {
		day = now.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), next, 0, 0, 0, now.Location())
}

// GenerateEmailInput asks for a marketing email draft.
type GenerateEmailInput struct {
	Topic string `json:"topic" validate:"required"`
	Type  string `json:"type,omitempty"`
}

// SocialPostInput asks for a caption promoting a product.
type SocialPostInput struct {
	Product  ai.Product `json:"product"`
	Platform string     `json:"platform" validate:"required,oneof=instagram facebook twitter pinterest"`
	Tone     string     `json:"tone,omitempty" validate:"omitempty,oneof=professional casual enthusiastic informative"`
}

// GeneratedPost is a caption ready for review, generated or fallback.
type GeneratedPost struct {
	Success     bool      `json:"success"`
	Caption     string    `json:"caption"`
	Hashtags    []string  `json:"hashtags"`
	Platform    string    `json:"platform"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// SchedulePostInput queues a post. A nil ScheduledAt picks the next optimal hour.
type SchedulePostInput struct {
	Platform    string     `json:"platform" validate:"required,oneof=instagram facebook twitter pinterest"`
	Caption     string     `json:"caption" validate:"required,min=1"`
	Hashtags    []string   `json:"hashtags"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// CampaignInput creates an email campaign.
type CampaignInput struct {
	Subject   string `json:"subject" validate:"required,max=255"`
	Preheader string `json:"preheader,omitempty" validate:"max=255"`
	Content   string `json:"content" validate:"required"`
}

// SendStats reports a campaign delivery.
type SendStats struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// MarketingService drives AI copywriting, social scheduling and email campaigns.
type MarketingService struct {
	generator   ai.Generator
	posts       repository.SocialPostRepository
	campaigns   repository.CampaignRepository
	subscribers repository.SubscriberRepository
	mailer      mail.Mailer
	publisher   messaging.Publisher
	log         *zap.Logger
	publicURL   string
	workers     int
	now         func() time.Time
}

// NewMarketingService creates a MarketingService. generator may be nil when AI is not configured.
func NewMarketingService(
	generator ai.Generator,
	posts repository.SocialPostRepository,
	campaigns repository.CampaignRepository,
	subscribers repository.SubscriberRepository,
	m mail.Mailer,
	publisher messaging.Publisher,
	log *zap.Logger,
	publicURL string,
	workers int,
) *MarketingService {
	if workers <= 0 {
		workers = 1
	}
	return &MarketingService{
		generator:   generator,
		posts:       posts,
		campaigns:   campaigns,
		subscribers: subscribers,
		mailer:      m,
		publisher:   publisher,
		log:         log,
		publicURL:   strings.TrimRight(publicURL, "/"),
		workers:     workers,
		now:         time.Now,
	}
}

// GenerateEmail drafts a marketing email.
func (s *MarketingService) GenerateEmail(ctx context.Context, in GenerateEmailInput) (*ai.EmailDraft, error) {
	if s.generator == nil {
		return nil, unavailable("AI is not configured (Missing API Key)")
	}
	if err := check(in, "Topic is required"); err != nil {
		return nil, err
	}
	raw, err := s.generator.Generate(ctx, ai.EmailPrompt(in.Topic, in.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to generate email: %w", err)
	}
	draft, err := ai.ParseEmail(raw)
	if err != nil {
		s.log.Warn("Model returned unusable email", zap.Error(err))
		return nil, fmt.Errorf("failed to parse generated email: %w", err)
	}
	return draft, nil
}

// GenerateSocialPost writes a caption for a product. Any generation failure degrades to
// a fixed template so the caller always gets usable copy.
func (s *MarketingService) GenerateSocialPost(ctx context.Context, in SocialPostInput) (*GeneratedPost, error) {
	if err := check(in, "Invalid request data"); err != nil {
		return nil, err
	}
	if in.Tone == "" {
		in.Tone = DefaultTone
	}

	post, err := s.socialPost(ctx, in)
	if err != nil {
		s.log.Warn("Falling back to template social post",
			zap.String("platform", in.Platform),
			zap.Error(err),
		)
		post = ai.FallbackSocialPost(in.Product)
	}
	return &GeneratedPost{
		Success:     true,
		Caption:     post.Caption,
		Hashtags:    post.Hashtags,
		Platform:    in.Platform,
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *MarketingService) socialPost(ctx context.Context, in SocialPostInput) (*ai.SocialPost, error) {
	if s.generator == nil {
		return nil, ErrUnavailable
	}
	raw, err := s.generator.Generate(ctx, ai.SocialPostPrompt(in.Product, in.Platform, in.Tone))
	if err != nil {
		return nil, err
	}
	return ai.ParseSocialPost(raw)
}

// SchedulePost queues a post for the scheduler.
func (s *MarketingService) SchedulePost(ctx context.Context, in SchedulePostInput, userID string) (*entity.SocialMediaPost, error) {
	if err := check(in, "Invalid request data"); err != nil {
		return nil, err
	}
	platform := entity.Platform(in.Platform)
	at := NextOptimalTime(platform, s.now())
	if in.ScheduledAt != nil {
		at = *in.ScheduledAt
	}
	p := &entity.SocialMediaPost{
		Platform:    platform,
		Content:     in.Caption,
		Hashtags:    strings.Join(ai.NormalizeHashtags(in.Hashtags), ","),
		ImageURL:    in.ImageURL,
		ScheduledAt: at.UTC(),
		Status:      entity.PostScheduled,
		CreatedBy:   userID,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("Social post scheduled",
		zap.String("post_id", p.ID),
		zap.String("platform", in.Platform),
		zap.Time("scheduled_at", p.ScheduledAt),
	)
	return p, nil
}

// Posts lists scheduled and dispatched posts, soonest first.
func (s *MarketingService) Posts(ctx context.Context) ([]entity.SocialMediaPost, error) {
	return s.posts.List(ctx, []string{entity.PostScheduled, entity.PostDispatched}, 50)
}

// RunScheduler dispatches due posts every interval until ctx is cancelled.
func (s *MarketingService) RunScheduler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.log.Info("Social post scheduler started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Social post scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.DispatchDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error("Failed to dispatch social posts", zap.Error(err))
			}
		}
	}
}

// DispatchDue publishes every post whose time has come and marks it dispatched.
// A post whose publish fails stays scheduled for the next tick.
func (s *MarketingService) DispatchDue(ctx context.Context) (int, error) {
	due, err := s.posts.ListDue(ctx, s.now().UTC(), dueBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range due {
		e := entity.SocialPostDue{
			PostID:      p.ID,
			Platform:    p.Platform,
			Content:     p.Content,
			Hashtags:    p.Hashtags,
			ImageURL:    p.ImageURL,
			ScheduledAt: p.ScheduledAt,
		}
		if err := s.publisher.PublishEvent(ctx, messaging.TopicSocialPostDue, p.ID, e); err != nil {
			s.log.Error("Failed to publish SocialPostDue", zap.String("post_id", p.ID), zap.Error(err))
			continue
		}
		if err := s.posts.UpdateStatus(ctx, p.ID, entity.PostDispatched); err != nil {
			return n, fmt.Errorf("failed to mark post %s dispatched: %w", p.ID, err)
		}
		n++
	}
	if n > 0 {
		s.log.Info("Social posts dispatched", zap.Int("count", n))
	}
	return n, nil
}

func (s *MarketingService) Campaigns(ctx context.Context) ([]entity.EmailCampaign, error) {
	return s.campaigns.List(ctx)
}

func (s *MarketingService) CreateCampaign(ctx context.Context, in CampaignInput, userID string) (*entity.EmailCampaign, error) {
	if err := check(in, "Validation error"); err != nil {
		return nil, err
	}
	c := &entity.EmailCampaign{
		Subject:   strings.TrimSpace(in.Subject),
		Preheader: in.Preheader,
		Content:   in.Content,
		Status:    entity.CampaignDraft,
		CreatedBy: userID,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SendCampaign mails a draft campaign to every active subscriber with bounded
// concurrency. Individual delivery failures are counted, not returned.
func (s *MarketingService) SendCampaign(ctx context.Context, id string) (*SendStats, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Campaign not found")
	}
	if c.Status == entity.CampaignSent {
		return nil, conflict("Campaign has already been sent")
	}
	if err := s.campaigns.Claim(ctx, c.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict("Campaign is already being sent")
		}
		return nil, err
	}

	active := true
	recipients, err := s.subscribers.List(ctx, &active)
	if err != nil {
		if rerr := s.campaigns.Release(ctx, c.ID); rerr != nil {
			s.log.Error("Failed to release campaign", zap.String("campaign_id", c.ID), zap.Error(rerr))
		}
		return nil, err
	}

	var sent, failed atomic.Int64
	data := mail.Campaign{
		Preheader:      c.Preheader,
		Content:        template.HTML(c.Content),
		UnsubscribeURL: s.publicURL + "/newsletter/unsubscribe",
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, r := range recipients {
		g.Go(func() error {
			msg, err := mail.CampaignMessage(r.Email, c.Subject, data)
			if err == nil {
				err = s.mailer.Send(gctx, msg)
			}
			if err != nil {
				failed.Add(1)
				s.log.Warn("Campaign delivery failed",
					zap.String("campaign_id", c.ID),
					zap.String("subscriber_id", r.ID),
					zap.Error(err),
				)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	now := s.now().UTC()
	c.Status = entity.CampaignSent
	c.SentAt = &now
	c.SentCount = int(sent.Load())
	c.FailedCount = int(failed.Load())
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("Campaign sent",
		zap.String("campaign_id", c.ID),
		zap.Int("sent", c.SentCount),
		zap.Int("failed", c.FailedCount),
	)
	return &SendStats{Total: len(recipients), Sent: c.SentCount, Failed: c.FailedCount}, nil
}
