package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// Overview is the back-office dashboard summary.
type Overview struct {
	Period          string                       `json:"period"`
	Since           time.Time                    `json:"since"`
	Revenue         float64                      `json:"revenue"`
	OrdersByStatus  map[entity.OrderStatus]int64 `json:"ordersByStatus"`
	TotalOrders     int64                        `json:"totalOrders"`
	Customers       int64                        `json:"customers"`
	Subscribers     int64                        `json:"subscribers"`
	LowStock        []entity.ProductVariant      `json:"lowStock"`
	OutOfStockCount int64                        `json:"outOfStockCount"`
}

// AnalyticsService aggregates dashboard figures.
type AnalyticsService struct {
	orders      repository.OrderRepository
	users       repository.UserRepository
	subscribers repository.SubscriberRepository
	inventory   repository.InventoryRepository
	threshold   int
	now         func() time.Time
}

func NewAnalyticsService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	subscribers repository.SubscriberRepository,
	inventory repository.InventoryRepository,
	lowStockThreshold int,
) *AnalyticsService {
	return &AnalyticsService{
		orders:      orders,
		users:       users,
		subscribers: subscribers,
		inventory:   inventory,
		threshold:   lowStockThreshold,
		now:         time.Now,
	}
}

// PeriodStart returns the start of period (today, week, month or year) relative to now.
// Unknown periods mean today.
func PeriodStart(period string, now time.Time) time.Time {
	y, m, d := now.Date()
	switch period {
	case "week":
		return now.Add(-7 * 24 * time.Hour)
	case "month":
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case "year":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
	}
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func (s *AnalyticsService) Overview(ctx context.Context, period string) (*Overview, error) {
	switch period {
	case "today", "week", "month", "year":
	default:
		period = "today"
	}
	out := &Overview{Period: period, Since: PeriodStart(period, s.now())}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Revenue, err = s.orders.Revenue(gctx, out.Since); return })
	g.Go(func() (err error) { out.OrdersByStatus, err = s.orders.CountByStatus(gctx); return })
	g.Go(func() (err error) { out.Customers, err = s.users.CountByRole(gctx, entity.RoleCustomer); return })
	g.Go(func() (err error) { out.Subscribers, err = s.subscribers.CountActive(gctx); return })
	g.Go(func() (err error) {
		out.LowStock, err = s.inventory.ListVariants(gctx, repository.VariantFilter{MaxStock: &s.threshold})
		return
	})
	g.Go(func() (err error) { out.OutOfStockCount, err = s.inventory.CountOutOfStock(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range out.OrdersByStatus {
		out.TotalOrders += n
	}
	return out, nil
}
