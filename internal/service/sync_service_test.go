package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
)

func newSyncService(t *testing.T) *SyncService {
	t.Helper()
	db := newTestDB(t)
	seedProduct(t, db, "hoodie", 45, 3)
	seedProduct(t, db, "cap", 20, 0)
	users := postgres.NewUserRepository(db)
	require.NoError(t, users.Create(context.Background(), &entity.User{Email: "c@example.com", Password: "x", Role: entity.RoleCustomer}))
	require.NoError(t, users.Create(context.Background(), &entity.User{Email: "s@example.com", Password: "x", Role: entity.RoleStaff}))
	return NewSyncService(
		postgres.NewCategoryRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewInventoryRepository(db),
		users,
		postgres.NewSettingsRepository(db),
		nopLogger(),
	)
}

func TestSyncService_Run(t *testing.T) {
	ctx := context.Background()
	svc := newSyncService(t)
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.LastSync)
	assert.False(t, st.SyncInProgress)

	res, next, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Products)
	assert.EqualValues(t, 2, res.Variants)
	assert.EqualValues(t, 1, res.Customers)
	assert.Zero(t, res.Orders)
	assert.Equal(t, fixed.Add(SyncCooldown), *next)

	st, err = svc.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.LastSync)
	assert.True(t, st.LastSync.Equal(fixed))
	require.NotNil(t, st.NextSyncAvailable)
}

func TestSyncService_OverlappingRunIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newSyncService(t)

	svc.running.Store(true)
	_, _, err := svc.Run(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.SyncInProgress)
	assert.Nil(t, st.NextSyncAvailable)
	svc.running.Store(false)

	_, _, err = svc.Run(ctx)
	assert.NoError(t, err)
}

func TestSyncService_StatusDoesNotBlockRun(t *testing.T) {
	ctx := context.Background()
	svc := newSyncService(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _ = svc.Status(ctx)
			}
		}()
	}

	for i := 0; i < 20; i++ {
		_, _, err := svc.Run(ctx)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}
