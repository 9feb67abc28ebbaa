package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// ReviewInput is a storefront review submission.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Title   string `json:"title,omitempty" validate:"max=255"`
	Comment string `json:"comment" validate:"required,max=5000"`
}

// ProductReviews are the approved reviews of one product.
type ProductReviews struct {
	Reviews       []entity.ProductReview `json:"reviews"`
	AverageRating float64                `json:"averageRating"`
	TotalReviews  int64                  `json:"totalReviews"`
}

// ModerationInput approves, rejects or deletes a review.
type ModerationInput struct {
	ReviewID string `json:"reviewId" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=approve reject delete"`
}

// ReviewService handles submissions and moderation.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	log      *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, log: log}
}

func (s *ReviewService) ForProduct(ctx context.Context, productID string) (*ProductReviews, error) {
	reviews, err := s.reviews.List(ctx, repository.ReviewFilter{ProductID: productID, Status: "approved"})
	if err != nil {
		return nil, err
	}
	avg, n, err := s.reviews.Rating(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{Reviews: reviews, AverageRating: math.Round(avg*10) / 10, TotalReviews: n}, nil
}

// Submit stores a review pending moderation.
func (s *ReviewService) Submit(ctx context.Context, productID string, in ReviewInput, userID string) (*entity.ProductReview, error) {
	if err := check(in, "Invalid review data"); err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, orNotFound(err, "Product not found")
	}
	r := &entity.ProductReview{
		ProductID: productID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Rating:    in.Rating,
		Title:     strings.TrimSpace(in.Title),
		Comment:   strings.TrimSpace(in.Comment),
	}
	if userID != "" {
		r.UserID = &userID
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("Review submitted", zap.String("review_id", r.ID), zap.String("product_id", productID))
	return r, nil
}

// Highlights returns the newest approved five-star reviews.
func (s *ReviewService) Highlights(ctx context.Context, limit int) ([]entity.ProductReview, error) {
	if limit <= 0 || limit > 50 {
		limit = 6
	}
	return s.reviews.List(ctx, repository.ReviewFilter{Status: "approved", Rating: 5, Limit: limit})
}

// Moderation lists reviews by status (pending, approved, rejected or all) with counts.
func (s *ReviewService) Moderation(ctx context.Context, status string) ([]entity.ProductReview, repository.ReviewSummary, error) {
	if status == "all" {
		status = ""
	}
	reviews, err := s.reviews.List(ctx, repository.ReviewFilter{Status: status})
	if err != nil {
		return nil, repository.ReviewSummary{}, err
	}
	sum, err := s.reviews.Summary(ctx)
	if err != nil {
		return nil, repository.ReviewSummary{}, err
	}
	return reviews, sum, nil
}

// Moderate applies a moderation action. A deleted review is returned as nil.
func (s *ReviewService) Moderate(ctx context.Context, in ModerationInput) (*entity.ProductReview, error) {
	if err := check(in, "Invalid request data"); err != nil {
		return nil, err
	}
	if in.Action == "delete" {
		if err := s.reviews.Delete(ctx, in.ReviewID); err != nil {
			return nil, orNotFound(err, "Review not found")
		}
		return nil, nil
	}
	r, err := s.reviews.FindByID(ctx, in.ReviewID)
	if err != nil {
		return nil, orNotFound(err, "Review not found")
	}
	r.IsApproved = in.Action == "approve"
	r.IsRejected = in.Action == "reject"
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, orNotFound(err, "Review not found")
	}
	return r, nil
}
