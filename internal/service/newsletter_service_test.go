package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func TestNewsletterService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mailer := &sentMail{}
	svc := NewNewsletterService(postgres.NewSubscriberRepository(db), mailer, nopLogger(), "https://shop.example")

	sub, err := svc.Subscribe(ctx, " Captain@Example.com ", "Cap")
	require.NoError(t, err)
	assert.Equal(t, "captain@example.com", sub.Email)
	assert.True(t, sub.IsActive)

	_, err = svc.Subscribe(ctx, "captain@example.com", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "You are already subscribed!", ve.Message)

	require.NoError(t, svc.Unsubscribe(ctx, "captain@example.com"))
	inactive, err := svc.List(ctx, "inactive")
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.NotNil(t, inactive[0].UnsubscribedAt)

	back, err := svc.Subscribe(ctx, "captain@example.com", "Captain Ray")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, back.ID)
	assert.True(t, back.IsActive)
	assert.Nil(t, back.UnsubscribedAt)
	require.NotNil(t, back.Name)
	assert.Equal(t, "Captain Ray", *back.Name)

	sent := mailer.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Subject, "Welcome to")
	assert.Contains(t, sent[1].Subject, "Welcome back")

	active, err := svc.List(ctx, "active")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.List(ctx, "bogus")
	assert.Error(t, err)
}

func TestNewsletterService_Errors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewNewsletterService(postgres.NewSubscriberRepository(db), &sentMail{}, nopLogger(), "")

	_, err := svc.Subscribe(ctx, "", "")
	assert.EqualError(t, err, "Email is required")

	_, err = svc.Subscribe(ctx, "not-an-email", "")
	assert.EqualError(t, err, "Invalid email address")

	err = svc.Unsubscribe(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), repository.ErrNotFound)
}

func TestNewsletterService_MailFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	mailer := &sentMail{fail: map[string]bool{"bounce@example.com": true}}
	svc := NewNewsletterService(postgres.NewSubscriberRepository(db), mailer, nopLogger(), "")

	sub, err := svc.Subscribe(ctx, "bounce@example.com", "")
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.Empty(t, mailer.sent())
}
