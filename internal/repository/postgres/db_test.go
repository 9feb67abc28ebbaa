package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open("file::memory:?_foreign_keys=on"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func seedTestProduct(t *testing.T, db *gorm.DB, slug string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:      "Product " + slug,
		Slug:      slug,
		SKU:       "SKU-" + slug,
		BasePrice: 20,
		IsActive:  true,
		Variants: []entity.ProductVariant{
			{Name: "M", SKU: "SKU-" + slug + "-M", Price: 20, Stock: stock},
		},
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}
