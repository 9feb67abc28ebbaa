package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// SyncCooldown is advertised to clients as the wait before the next sync.
const SyncCooldown = 30 * time.Second

// SyncResults are the record counts gathered by one sync.
type SyncResults struct {
	Categories   int64     `json:"categories"`
	Products     int64     `json:"products"`
	Variants     int64     `json:"variants"`
	Orders       int64     `json:"orders"`
	Transactions int64     `json:"transactions"`
	Customers    int64     `json:"customers"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}

// SyncStatus describes the last sync and whether one is running.
type SyncStatus struct {
	LastSync          *time.Time `json:"lastSync"`
	SyncInProgress    bool       `json:"syncInProgress"`
	NextSyncAvailable *time.Time `json:"nextSyncAvailable"`
}

// SyncService recounts the main tables on demand. Only one sync runs at a time.
type SyncService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	inventory  repository.InventoryRepository
	users      repository.UserRepository
	settings   repository.SettingsRepository
	log        *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	running atomic.Bool
	last    *time.Time
}

func NewSyncService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	inventory repository.InventoryRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	log *zap.Logger,
) *SyncService {
	return &SyncService{
		categories: categories,
		products:   products,
		orders:     orders,
		inventory:  inventory,
		users:      users,
		settings:   settings,
		log:        log,
		now:        time.Now,
	}
}

// Run performs a sync. A call overlapping a running sync fails with ErrSyncInProgress.
func (s *SyncService) Run(ctx context.Context) (*SyncResults, *time.Time, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	res := &SyncResults{StartTime: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { res.Categories, err = s.categories.Count(gctx); return })
	g.Go(func() (err error) { res.Products, err = s.products.Count(gctx); return })
	g.Go(func() (err error) { res.Variants, err = s.products.CountVariants(gctx); return })
	g.Go(func() (err error) { res.Orders, err = s.orders.Count(gctx); return })
	g.Go(func() (err error) { res.Transactions, err = s.inventory.CountTransactions(gctx); return })
	g.Go(func() (err error) { res.Customers, err = s.users.CountByRole(gctx, entity.RoleCustomer); return })
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	end := s.now().UTC()
	res.EndTime = end
	if err := s.settings.TouchSync(ctx, end); err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	s.last = &end
	s.mu.Unlock()

	next := end.Add(SyncCooldown)
	s.log.Info("Database sync completed",
		zap.Int64("products", res.Products),
		zap.Int64("orders", res.Orders),
		zap.Duration("took", end.Sub(res.StartTime)),
	)
	return res, &next, nil
}

// Status reports the last sync time, falling back to the stored stamp after a restart.
func (s *SyncService) Status(ctx context.Context) (*SyncStatus, error) {
	last, err := s.LastSync(ctx)
	if err != nil {
		return nil, err
	}
	st := &SyncStatus{LastSync: last, SyncInProgress: s.running.Load()}
	if !st.SyncInProgress {
		next := s.now().UTC().Add(SyncCooldown)
		st.NextSyncAvailable = &next
	}
	return st, nil
}

func (s *SyncService) LastSync(ctx context.Context) (*time.Time, error) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last != nil {
		return last, nil
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.LastSyncAt, nil
}
