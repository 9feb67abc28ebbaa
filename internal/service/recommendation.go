package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

const (
	// DefaultRecommendations is how many similar products are returned when no limit is given.
	DefaultRecommendations = 6
	// DefaultUpsells is how many bought-together products are returned when no limit is given.
	DefaultUpsells = 3
	// SimilarityThreshold is the lowest score a product needs to be recommended.
	SimilarityThreshold = 0.6

	weightCategory     = 0.3
	weightPrice        = 0.2
	weightConservation = 0.15
	weightDescription  = 0.25

	// Prices further apart than this share of their mean score nothing.
	priceBand = 0.3
	// Products within this many dollars are labelled as a similar price range.
	priceRangeLabel = 15

	historyOrders   = 5
	historyProducts = 3
	coPurchaseScan  = 50
	repeatBoost     = 0.1
)

// Recommendation is a product with its similarity to the product being viewed.
type Recommendation struct {
	entity.Product
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendationService suggests products from catalog content and order history.
type RecommendationService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewRecommendationService(products repository.ProductRepository, orders repository.OrderRepository) *RecommendationService {
	return &RecommendationService{products: products, orders: orders}
}

// Similar ranks in-stock active products by similarity to productID, best first.
// An unknown product yields no recommendations.
func (s *RecommendationService) Similar(ctx context.Context, productID string, limit int) ([]Recommendation, error) {
	if limit <= 0 || limit > 24 {
		limit = DefaultRecommendations
	}
	source, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return []Recommendation{}, nil
	}
	if err != nil {
		return nil, err
	}
	candidates, _, err := s.products.List(ctx, repository.ProductFilter{InStock: true})
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, limit)
	for _, p := range candidates {
		if p.ID == source.ID {
			continue
		}
		score := Similarity(source, &p)
		if score < SimilarityThreshold {
			continue
		}
		out = append(out, Recommendation{Product: p, Score: math.Round(score*1000) / 1000, Reason: similarityReason(source, &p)})
	}
	return best(out, limit), nil
}

// Personalized merges the similar products of up to three products from the user's
// last five orders, boosting a product each time another purchase suggests it again.
// Without a user or a purchase history it falls back to featured in-stock products.
// The flag reports whether history was used.
func (s *RecommendationService) Personalized(ctx context.Context, userID string, limit int) ([]Recommendation, bool, error) {
	if limit <= 0 || limit > 24 {
		limit = DefaultRecommendations
	}
	if userID == "" {
		out, err := s.featured(ctx, limit)
		return out, false, err
	}
	purchased, err := s.purchasedProducts(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if len(purchased) == 0 {
		out, err := s.featured(ctx, limit)
		return out, false, err
	}

	merged := make(map[string]*Recommendation)
	var order []string
	for _, id := range purchased {
		similar, err := s.Similar(ctx, id, limit)
		if err != nil {
			return nil, false, err
		}
		for _, rec := range similar {
			if seen, ok := merged[rec.ID]; ok {
				seen.Score = math.Min(seen.Score+repeatBoost, 1)
				continue
			}
			merged[rec.ID] = &rec
			order = append(order, rec.ID)
		}
	}
	out := make([]Recommendation, 0, len(order))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	return best(out, limit), true, nil
}

// purchasedProducts returns up to historyProducts distinct product IDs from the
// user's latest orders, newest first. Lines of deleted variants are skipped.
func (s *RecommendationService) purchasedProducts(ctx context.Context, userID string) ([]string, error) {
	orders, _, err := s.orders.List(ctx, repository.OrderFilter{UserID: userID, Page: repository.Page{Limit: historyOrders}})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, o := range orders {
		for _, item := range o.Items {
			v, err := s.products.FindVariant(ctx, item.VariantID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if !slices.Contains(ids, v.ProductID) {
				ids = append(ids, v.ProductID)
			}
			if len(ids) == historyProducts {
				return ids, nil
			}
		}
	}
	return ids, nil
}

func (s *RecommendationService) featured(ctx context.Context, limit int) ([]Recommendation, error) {
	yes := true
	products, _, err := s.products.List(ctx, repository.ProductFilter{
		Featured: &yes,
		InStock:  true,
		Page:     repository.Page{Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, len(products))
	for _, p := range products {
		out = append(out, Recommendation{Product: p, Score: 1, Reason: "Featured product"})
	}
	return out, nil
}

// BoughtTogether returns active in-stock products that shared an order with productID
// among its latest fifty orders, most frequent first. Score is the share of those
// orders that contained the other product.
func (s *RecommendationService) BoughtTogether(ctx context.Context, productID string, limit int) ([]Recommendation, error) {
	if limit <= 0 || limit > 12 {
		limit = DefaultUpsells
	}
	counts, basis, err := s.orders.BoughtWith(ctx, productID, coPurchaseScan)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, limit)
	for _, c := range counts {
		if len(out) == limit {
			break
		}
		p, err := s.products.FindByID(ctx, c.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsActive || p.TotalStock() == 0 {
			continue
		}
		out = append(out, Recommendation{
			Product: *p,
			Score:   math.Min(float64(c.N)/float64(basis), 1),
			Reason:  fmt.Sprintf("Bought together %d times", c.N),
		})
	}
	return out, nil
}

// best sorts by score, keeping insertion order among ties, and keeps the top limit.
func best(recs []Recommendation, limit int) []Recommendation {
	slices.SortStableFunc(recs, func(a, b Recommendation) int { return cmp.Compare(b.Score, a.Score) })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// Similarity scores two products from 0 to 0.9 on shared category, price proximity,
// conservation focus and description vocabulary.
func Similarity(a, b *entity.Product) float64 {
	var score float64
	if a.CategoryID != nil && b.CategoryID != nil && *a.CategoryID == *b.CategoryID {
		score += weightCategory
	}
	if mean := (a.BasePrice + b.BasePrice) / 2; mean > 0 {
		ratio := math.Abs(a.BasePrice-b.BasePrice) / mean
		if ratio < priceBand {
			score += weightPrice * (1 - ratio)
		}
	}
	if a.ConservationFocus != "" && a.ConservationFocus == b.ConservationFocus {
		score += weightConservation
	}
	if a.Description != "" && b.Description != "" {
		score += weightDescription * wordOverlap(a.Description, b.Description)
	}
	return score
}

// wordOverlap is the number of shared words over the larger vocabulary.
func wordOverlap(a, b string) float64 {
	wa, wb := words(a), words(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	var shared int
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(wa), len(wb)))
}

func words(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

func similarityReason(a, b *entity.Product) string {
	var reasons []string
	if a.CategoryID != nil && b.CategoryID != nil && *a.CategoryID == *b.CategoryID {
		reasons = append(reasons, "Matches your style")
	}
	if math.Abs(a.BasePrice-b.BasePrice) < priceRangeLabel {
		reasons = append(reasons, "Similar price range")
	}
	if a.ConservationFocus != "" && a.ConservationFocus == b.ConservationFocus {
		reasons = append(reasons, "Supports "+a.ConservationFocus)
	}
	if len(reasons) == 0 {
		return "Handpicked for you"
	}
	return strings.Join(reasons, " • ")
}
