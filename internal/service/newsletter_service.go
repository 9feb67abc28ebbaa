package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// NewsletterService manages the subscriber list.
type NewsletterService struct {
	subscribers repository.SubscriberRepository
	mailer      mail.Mailer
	log         *zap.Logger
	publicURL   string
	now         func() time.Time
}

func NewNewsletterService(subscribers repository.SubscriberRepository, mailer mail.Mailer, log *zap.Logger, publicURL string) *NewsletterService {
	return &NewsletterService{
		subscribers: subscribers,
		mailer:      mailer,
		log:         log,
		publicURL:   strings.TrimRight(publicURL, "/"),
		now:         time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("Email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", invalid("Invalid email address")
	}
	return email, nil
}

// Subscribe adds a subscriber or reactivates one that left.
func (s *NewsletterService) Subscribe(ctx context.Context, email, name string) (*entity.NewsletterSubscriber, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	existing, err := s.subscribers.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, invalid("You are already subscribed!")
		}
		existing.IsActive = true
		existing.UnsubscribedAt = nil
		if name != "" {
			existing.Name = &name
		}
		if err := s.subscribers.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.log.Info("Subscriber reactivated", zap.String("subscriber_id", existing.ID))
		s.sendWelcome(ctx, existing, true)
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	sub := &entity.NewsletterSubscriber{Email: email, IsActive: true}
	if name != "" {
		sub.Name = &name
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		return nil, orConflict(err, "You are already subscribed!")
	}
	s.log.Info("Subscriber added", zap.String("subscriber_id", sub.ID))
	s.sendWelcome(ctx, sub, false)
	return sub, nil
}

func (s *NewsletterService) sendWelcome(ctx context.Context, sub *entity.NewsletterSubscriber, returning bool) {
	data := mail.NewsletterWelcome{Returning: returning, UnsubscribeURL: s.publicURL + "/newsletter/unsubscribe"}
	if sub.Name != nil {
		data.Name = *sub.Name
	}
	msg, err := mail.NewsletterWelcomeMessage(sub.Email, data)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("Failed to send newsletter welcome", zap.String("subscriber_id", sub.ID), zap.Error(err))
	}
}

// Unsubscribe deactivates a subscriber, keeping the row for reactivation.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	sub, err := s.subscribers.FindByEmail(ctx, email)
	if err != nil {
		return orNotFound(err, "Email not found in our subscriber list")
	}
	if !sub.IsActive {
		return nil
	}
	now := s.now().UTC()
	sub.IsActive = false
	sub.UnsubscribedAt = &now
	if err := s.subscribers.Update(ctx, sub); err != nil {
		return err
	}
	s.log.Info("Subscriber left", zap.String("subscriber_id", sub.ID))
	return nil
}

// List returns subscribers filtered by status: active, inactive or all.
func (s *NewsletterService) List(ctx context.Context, status string) ([]entity.NewsletterSubscriber, error) {
	var active *bool
	switch status {
	case "", "all":
	case "active", "inactive":
		v := status == "active"
		active = &v
	default:
		return nil, invalid("Invalid status %s", status)
	}
	return s.subscribers.List(ctx, active)
}

func (s *NewsletterService) Delete(ctx context.Context, id string) error {
	return orNotFound(s.subscribers.Delete(ctx, id), "Subscriber not found")
}
