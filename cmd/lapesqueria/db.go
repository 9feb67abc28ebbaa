package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer postgres.Close(db)

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("Database migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and default settings into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer postgres.Close(db)

		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		if err := seedCatalog(ctx, db); err != nil {
			return err
		}
		if _, err := postgres.NewSettingsRepository(db).Get(ctx); err != nil {
			return err
		}
		if seedAdminEmail != "" {
			return seedAdmin(ctx, db)
		}
		return nil
	},
}

func openDB(ctx context.Context) (*gorm.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return postgres.InitDB(ctx, cfg.Database.URL, logger)
}

func seedCatalog(ctx context.Context, db *gorm.DB) error {
	products := postgres.NewProductRepository(db)
	count, err := products.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Catalog already seeded", zap.Int64("products", count))
		return nil
	}

	cats, items := postgres.SeedCatalog()
	categories := postgres.NewCategoryRepository(db)
	for i := range cats {
		if err := categories.Create(ctx, &cats[i]); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", cats[i].Slug, err)
		}
	}
	for i := range items {
		if err := products.Create(ctx, &items[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", items[i].Slug, err)
		}
	}
	logger.Info("Catalog seeded", zap.Int("categories", len(cats)), zap.Int("products", len(items)))
	return nil
}

func seedAdmin(ctx context.Context, db *gorm.DB) error {
	staff := service.NewStaffService(postgres.NewUserRepository(db), logger)
	_, err := staff.Create(ctx, service.StaffInput{
		Email:    seedAdminEmail,
		Name:     "Administrator",
		Password: seedAdminPassword,
		Role:     entity.RoleAdmin,
	}, "seed")
	var ce *service.ConflictError
	if errors.As(err, &ce) {
		logger.Info("Admin account already exists", zap.String("email", seedAdminEmail))
		return nil
	}
	return err
}
