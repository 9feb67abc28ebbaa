package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/ai"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
	delivery "github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/delivery/http"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/marine"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/media"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging/gochannel"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/messaging/kafka"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/payment"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return serve(ctx)
	},
}

type broker interface {
	messaging.Publisher
	messaging.Subscriber
	io.Closer
}

func newBroker() broker {
	if len(cfg.Messaging.KafkaBrokers) > 0 {
		logger.Info("Using Kafka broker", zap.Strings("brokers", cfg.Messaging.KafkaBrokers))
		return kafka.NewKafkaBroker(cfg.Messaging.KafkaBrokers, logger)
	}
	logger.Info("KAFKA_BROKERS not set, using in-process broker")
	return gochannel.New(logger)
}

func newCache(ctx context.Context) (cache.Cache, func()) {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemory(), func() {}
	}
	r, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to memory cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return r, func() { _ = r.Close() }
}

func newMailer() mail.Mailer {
	if cfg.Email.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY not set, emails will only be logged")
		return mail.NewLogMailer(logger)
	}
	return mail.NewResend(cfg.Email.ResendAPIKey, cfg.Email.From)
}

func newGateway() payment.Gateway {
	if cfg.Payments.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
		return nil
	}
	return payment.NewStripe(cfg.Payments.StripeSecretKey, cfg.Payments.StripeWebhookSecret, cfg.Payments.Currency)
}

func newUploader() media.Uploader {
	if cfg.Media.CloudinaryURL == "" {
		logger.Warn("CLOUDINARY_URL not set, image uploads are disabled")
		return nil
	}
	c, err := media.NewCloudinary(cfg.Media.CloudinaryURL, cfg.Media.Folder)
	if err != nil {
		logger.Warn("Cloudinary unavailable, image uploads are disabled", zap.Error(err))
		return nil
	}
	return c
}

func newGenerator(ctx context.Context) ai.Generator {
	if cfg.AI.APIKey == "" {
		logger.Warn("GOOGLE_GENERATIVE_AI_KEY not set, AI features are disabled")
		return nil
	}
	g, err := ai.NewGenAI(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		logger.Warn("AI client unavailable, AI features are disabled", zap.Error(err))
		return nil
	}
	return g
}

func newServices(db *gorm.DB, c cache.Cache, pub messaging.Publisher, mailer mail.Mailer, generator ai.Generator) delivery.Services {
	publicURL := cfg.HTTP.PublicURL
	threshold := cfg.Inventory.LowStockThreshold

	users := postgres.NewUserRepository(db)
	orders := postgres.NewOrderRepository(db)
	products := postgres.NewProductRepository(db)
	categories := postgres.NewCategoryRepository(db)
	inventory := postgres.NewInventoryRepository(db)
	settings := postgres.NewSettingsRepository(db)
	subscribers := postgres.NewSubscriberRepository(db)
	events := postgres.NewEventStore(db)
	discounts := service.NewDiscountService(postgres.NewDiscountRepository(db), logger)

	return delivery.Services{
		Auth:       service.NewAuthService(users, orders, mailer, logger, cfg.Auth.Secret, cfg.TokenTTL(), publicURL),
		Catalog:    service.NewCatalogService(products, categories, newUploader(), logger),
		Discounts:  discounts,
		Inventory:  service.NewInventoryService(inventory, logger, threshold),
		Checkout:   service.NewCheckoutService(products, orders, events, settings, discounts, newGateway(), pub, logger, publicURL),
		Orders:     service.NewOrderService(orders, events, settings, pub, logger),
		Returns:    service.NewReturnService(postgres.NewReturnRepository(db), orders, logger),
		Recommend:  service.NewRecommendationService(products, orders),
		Reviews:    service.NewReviewService(postgres.NewReviewRepository(db), products, logger),
		Blog:       service.NewBlogService(postgres.NewBlogRepository(db), generator, logger),
		Newsletter: service.NewNewsletterService(subscribers, mailer, logger, publicURL),
		Marketing: service.NewMarketingService(generator, postgres.NewSocialPostRepository(db), postgres.NewCampaignRepository(db),
			subscribers, mailer, pub, logger, publicURL, cfg.Marketing.CampaignWorkers),
		Sync:      service.NewSyncService(categories, products, orders, inventory, users, settings, logger),
		Settings:  service.NewSettingsService(settings, logger),
		Staff:     service.NewStaffService(users, logger),
		Analytics: service.NewAnalyticsService(orders, users, subscribers, inventory, threshold),
		Marine:    marine.NewClient(c, logger, marine.DefaultEndpoints),
	}
}

func serve(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	db, err := postgres.InitDB(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer postgres.Close(db)
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	b := newBroker()
	defer b.Close()
	c, closeCache := newCache(ctx)
	defer closeCache()
	mailer := newMailer()

	svc := newServices(db, c, b, mailer, newGenerator(ctx))
	handler := delivery.NewHandler(svc, logger, cfg.HTTP.PublicURL)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		service.NewNotificationService(mailer, logger, cfg.HTTP.PublicURL).Run(ctx, b)
	}()
	go func() {
		defer wg.Done()
		svc.Marketing.RunScheduler(ctx, cfg.SchedulerInterval())
	}()
	logger.Info("Background workers started")

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(cfg.HTTP.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
	}

	logger.Info("Shutting down...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("HTTP shutdown failed", zap.Error(serr))
	}
	wg.Wait()
	return err
}
