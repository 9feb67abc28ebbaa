package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// InitDB opens a lib/pq connection pool and hands it to gorm.
func InitDB(ctx context.Context, dsn string, log *zap.Logger) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}))
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	log.Info("Database connected")
	return db, nil
}

// Open wraps a gorm dialector with the settings every repository relies on.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return db, nil
}

// Models lists every table managed by Migrate.
func Models() []any {
	return []any{
		&entity.User{}, &entity.CustomerReward{}, &entity.PointTransaction{},
		&entity.Category{}, &entity.Product{}, &entity.ProductVariant{}, &entity.InventoryTransaction{},
		&entity.DiscountCode{}, &entity.DiscountUsage{},
		&entity.Order{}, &entity.OrderItem{}, &entity.OrderNote{}, &entity.Return{}, &entity.ReturnItem{},
		&entity.ProductReview{}, &entity.BlogPost{}, &entity.NewsletterSubscriber{},
		&entity.EmailCampaign{}, &entity.SocialMediaPost{}, &entity.SiteSettings{},
		&entity.EventRecord{},
	}
}

// Migrate creates or updates every table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", repository.ErrConflict, pqErr.Message)
	}
	return err
}

func like(q string) string {
	return "%" + q + "%"
}

func paginate(q *gorm.DB, p repository.Page) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
