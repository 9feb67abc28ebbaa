package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/ai"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func newMarketingService(t *testing.T, gen ai.Generator) (*MarketingService, *gorm.DB, *sentMail, *recordingPublisher) {
	t.Helper()
	db := newTestDB(t)
	mailer := &sentMail{}
	pub := &recordingPublisher{}
	svc := NewMarketingService(
		gen,
		postgres.NewSocialPostRepository(db),
		postgres.NewCampaignRepository(db),
		postgres.NewSubscriberRepository(db),
		mailer,
		pub,
		nopLogger(),
		"https://shop.example",
		3,
	)
	return svc, db, mailer, pub
}

func TestNextOptimalTime(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		platform entity.Platform
		now      time.Time
		want     time.Time
	}{
		{entity.PlatformInstagram, time.Date(2025, 5, 1, 8, 30, 0, 0, loc), time.Date(2025, 5, 1, 9, 0, 0, 0, loc)},
		{entity.PlatformInstagram, time.Date(2025, 5, 1, 9, 0, 0, 0, loc), time.Date(2025, 5, 1, 14, 0, 0, 0, loc)},
		{entity.PlatformFacebook, time.Date(2025, 5, 1, 21, 0, 0, 0, loc), time.Date(2025, 5, 2, 10, 0, 0, 0, loc)},
		{entity.PlatformTwitter, time.Date(2025, 12, 31, 18, 0, 0, 0, loc), time.Date(2026, 1, 1, 8, 0, 0, 0, loc)},
		{"myspace", time.Date(2025, 5, 1, 15, 0, 0, 0, loc), time.Date(2025, 5, 1, 19, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			assert.Equal(t, tt.want, NextOptimalTime(tt.platform, tt.now))
		})
	}
}

func socialInput() SocialPostInput {
	return SocialPostInput{
		Product:  ai.Product{Name: "Redfish Hoodie", Description: "Performance hoodie", Price: 45, Category: "Hoodies"},
		Platform: "instagram",
	}
}

func TestMarketingService_GenerateSocialPost(t *testing.T) {
	ctx := context.Background()
	gen := &scriptedGenerator{out: "```json\n{\"caption\":\"Tight lines all season long!\",\"hashtags\":[\"#fishing\",\"redfish\",\"gulfcoast\",\"texas\",\"anglers\"]}\n```"}
	svc, _, _, _ := newMarketingService(t, gen)

	got, err := svc.GenerateSocialPost(ctx, socialInput())
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "Tight lines all season long!", got.Caption)
	assert.Equal(t, []string{"fishing", "redfish", "gulfcoast", "texas", "anglers"}, got.Hashtags)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "TONE: enthusiastic")
}

func TestMarketingService_GenerateSocialPostFallsBack(t *testing.T) {
	ctx := context.Background()
	for name, gen := range map[string]ai.Generator{
		"no generator": nil,
		"model error":  &scriptedGenerator{err: errors.New("quota exceeded")},
		"bad output":   &scriptedGenerator{out: "I cannot help with that"},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _, _, _ := newMarketingService(t, gen)
			got, err := svc.GenerateSocialPost(ctx, socialInput())
			require.NoError(t, err)
			assert.Contains(t, got.Caption, "Redfish Hoodie")
			assert.Equal(t, "fishinggear", got.Hashtags[0])
		})
	}
}

func TestMarketingService_GenerateSocialPostValidates(t *testing.T) {
	svc, _, _, _ := newMarketingService(t, nil)
	in := socialInput()
	in.Product.Price = 0
	in.Platform = "myspace"
	_, err := svc.GenerateSocialPost(context.Background(), in)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid request data", ve.Message)
	assert.Len(t, ve.Details, 2)
}

func TestMarketingService_GenerateEmail(t *testing.T) {
	ctx := context.Background()

	svc, _, _, _ := newMarketingService(t, nil)
	_, err := svc.GenerateEmail(ctx, GenerateEmailInput{Topic: "Summer sale"})
	assert.ErrorIs(t, err, ErrUnavailable)

	svc, _, _, _ = newMarketingService(t, &scriptedGenerator{out: "not json"})
	_, err = svc.GenerateEmail(ctx, GenerateEmailInput{Topic: "Summer sale"})
	assert.ErrorIs(t, err, ai.ErrInvalidOutput)

	svc, _, _, _ = newMarketingService(t, &scriptedGenerator{out: `{"subject":"Summer!","preheader":"Sale","content":"<p>Hi</p>"}`})
	draft, err := svc.GenerateEmail(ctx, GenerateEmailInput{Topic: "Summer sale"})
	require.NoError(t, err)
	assert.Equal(t, "Summer!", draft.Subject)
}

func TestMarketingService_ScheduleAndDispatch(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newMarketingService(t, nil)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	auto, err := svc.SchedulePost(ctx, SchedulePostInput{Platform: "facebook", Caption: "New drop", Hashtags: []string{"#fishing", "fishing"}}, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 13, 0, 0, 0, time.UTC), auto.ScheduledAt)
	assert.Equal(t, "fishing", auto.Hashtags)

	due := now.Add(-time.Minute)
	past, err := svc.SchedulePost(ctx, SchedulePostInput{Platform: "instagram", Caption: "Due now", ScheduledAt: &due}, "staff-1")
	require.NoError(t, err)

	n, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	events := pub.on(messaging.TopicSocialPostDue)
	require.Len(t, events, 1)
	assert.Equal(t, past.ID, events[0].Key)

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, entity.PostDispatched, posts[0].Status)
	assert.Equal(t, entity.PostScheduled, posts[1].Status)

	n, err = svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarketingService_DispatchKeepsPostOnPublishFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, _, pub := newMarketingService(t, nil)
	pub.err = errors.New("broker down")
	due := time.Now().Add(-time.Minute)
	_, err := svc.SchedulePost(ctx, SchedulePostInput{Platform: "twitter", Caption: "Retry me", ScheduledAt: &due}, "")
	require.NoError(t, err)

	n, err := svc.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	posts, err := svc.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, entity.PostScheduled, posts[0].Status)
}

func TestMarketingService_SchedulerStops(t *testing.T) {
	svc, _, _, _ := newMarketingService(t, nil)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunScheduler(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestMarketingService_SendCampaign(t *testing.T) {
	ctx := context.Background()
	svc, db, mailer, _ := newMarketingService(t, nil)
	mailer.fail = map[string]bool{"bounce@example.com": true}

	subs := postgres.NewSubscriberRepository(db)
	for _, email := range []string{"a@example.com", "b@example.com", "bounce@example.com"} {
		require.NoError(t, subs.Create(ctx, &entity.NewsletterSubscriber{Email: email, IsActive: true}))
	}
	require.NoError(t, subs.Create(ctx, &entity.NewsletterSubscriber{Email: "gone@example.com"}))

	c, err := svc.CreateCampaign(ctx, CampaignInput{Subject: "Spring run", Content: "<p>Trout are biting</p>"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.CampaignDraft, c.Status)

	stats, err := svc.SendCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, SendStats{Total: 3, Sent: 2, Failed: 1}, *stats)
	assert.Len(t, mailer.sent(), 2)

	_, err = svc.SendCampaign(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = svc.SendCampaign(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := svc.Campaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.CampaignSent, list[0].Status)
	assert.Equal(t, 2, list[0].SentCount)
}

func TestMarketingService_SendCampaignOnce(t *testing.T) {
	ctx := context.Background()
	svc, db, mailer, _ := newMarketingService(t, nil)

	subs := postgres.NewSubscriberRepository(db)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, subs.Create(ctx, &entity.NewsletterSubscriber{Email: email, IsActive: true}))
	}

	claimed, err := svc.CreateCampaign(ctx, CampaignInput{Subject: "Redfish run", Content: "<p>Tailing fish</p>"}, "admin-1")
	require.NoError(t, err)
	require.NoError(t, postgres.NewCampaignRepository(db).Claim(ctx, claimed.ID))
	_, err = svc.SendCampaign(ctx, claimed.ID)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Campaign is already being sent", ce.Message)
	assert.Empty(t, mailer.sent())

	c, err := svc.CreateCampaign(ctx, CampaignInput{Subject: "Flounder gig", Content: "<p>Fall run</p>"}, "admin-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SendCampaign(ctx, c.ID); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.Len(t, mailer.sent(), 3, "every subscriber is mailed exactly once")
}
