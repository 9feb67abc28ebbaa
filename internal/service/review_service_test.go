package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func newReviewService(t *testing.T) (*ReviewService, string) {
	t.Helper()
	db := newTestDB(t)
	p := seedProduct(t, db, "reef-hoodie", 55, 3)
	return NewReviewService(postgres.NewReviewRepository(db), postgres.NewProductRepository(db), nopLogger()), p.ID
}

func TestReviewService_SubmitValidatesRating(t *testing.T) {
	ctx := context.Background()
	svc, productID := newReviewService(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(ctx, productID, ReviewInput{Rating: rating, Name: "Ana", Comment: "Warm"}, "")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "rating %d", rating)
		assert.Equal(t, "Invalid review data", ve.Message)
		require.NotEmpty(t, ve.Details)
		assert.Equal(t, "rating", ve.Details[0].Field)
	}
	for _, rating := range []int{1, 5} {
		r, err := svc.Submit(ctx, productID, ReviewInput{Rating: rating, Name: "Ana", Comment: "Warm"}, "")
		require.NoError(t, err, "rating %d", rating)
		assert.False(t, r.IsApproved)
		assert.False(t, r.IsRejected)
	}

	_, err := svc.Submit(ctx, "missing", ReviewInput{Rating: 4, Name: "Ana", Comment: "Warm"}, "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Product not found", nf.Message)
}

func TestReviewService_ForProductListsApprovedOnly(t *testing.T) {
	ctx := context.Background()
	svc, productID := newReviewService(t)

	submit := func(rating int) string {
		r, err := svc.Submit(ctx, productID, ReviewInput{Rating: rating, Name: "Lu", Comment: "Nice"}, "")
		require.NoError(t, err)
		return r.ID
	}
	for _, rating := range []int{5, 4, 4} {
		_, err := svc.Moderate(ctx, ModerationInput{ReviewID: submit(rating), Action: "approve"})
		require.NoError(t, err)
	}
	submit(1)
	_, err := svc.Moderate(ctx, ModerationInput{ReviewID: submit(2), Action: "reject"})
	require.NoError(t, err)

	got, err := svc.ForProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, got.Reviews, 3)
	assert.EqualValues(t, 3, got.TotalReviews)
	assert.InDelta(t, 4.3, got.AverageRating, 0.0001)
	for _, r := range got.Reviews {
		assert.True(t, r.IsApproved)
	}

	empty, err := svc.ForProduct(ctx, "no-reviews")
	require.NoError(t, err)
	assert.Empty(t, empty.Reviews)
	assert.Zero(t, empty.AverageRating)
}

func TestReviewService_Moderate(t *testing.T) {
	ctx := context.Background()
	svc, productID := newReviewService(t)

	r, err := svc.Submit(ctx, productID, ReviewInput{Rating: 5, Name: "Mo", Comment: "Great"}, "")
	require.NoError(t, err)

	approved, err := svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "approve"})
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.False(t, approved.IsRejected)

	highlights, err := svc.Highlights(ctx, 0)
	require.NoError(t, err)
	require.Len(t, highlights, 1)

	rejected, err := svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "reject"})
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.True(t, rejected.IsRejected)

	list, sum, err := svc.Moderation(ctx, "rejected")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, repository.ReviewSummary{Rejected: 1, Total: 1}, sum)

	_, err = svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "hide"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	deleted, err := svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "delete"})
	require.NoError(t, err)
	assert.Nil(t, deleted)

	_, err = svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "approve"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Moderate(ctx, ModerationInput{ReviewID: r.ID, Action: "delete"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, sum, err := svc.Moderation(ctx, "all")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, sum.Total)
}
