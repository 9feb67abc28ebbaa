package http

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/marine"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

// Services are the application services the API exposes.
type Services struct {
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Discounts  *service.DiscountService
	Inventory  *service.InventoryService
	Checkout   *service.CheckoutService
	Orders     *service.OrderService
	Returns    *service.ReturnService
	Recommend  *service.RecommendationService
	Reviews    *service.ReviewService
	Blog       *service.BlogService
	Newsletter *service.NewsletterService
	Marketing  *service.MarketingService
	Sync       *service.SyncService
	Settings   *service.SettingsService
	Staff      *service.StaffService
	Analytics  *service.AnalyticsService
	Marine     *marine.Client
}

// Handler handles HTTP requests for the application.
type Handler struct {
	Services
	log          *zap.Logger
	secureCookie bool
}

// NewHandler creates a Handler. Session cookies are marked Secure when publicURL is https.
func NewHandler(s Services, log *zap.Logger, publicURL string) *Handler {
	return &Handler{
		Services:     s,
		log:          log,
		secureCookie: strings.HasPrefix(publicURL, "https://"),
	}
}

// Routes returns the full middleware chain around the route table.
func (h *Handler) Routes(corsOrigins []string) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h.Recover(h.LogRequests(EnableCORS(corsOrigins)(h.Authenticate(mux))))
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)

	// Accounts
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/session", h.handleSession)
	mux.HandleFunc("GET /api/account", signedIn(h.handleAccount))
	mux.HandleFunc("GET /api/admin/customers", admin(h.handleListCustomers))
	mux.HandleFunc("GET /api/admin/customers/{id}", admin(h.handleGetCustomer))

	// Catalog
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/featured", h.handleFeaturedProducts)
	mux.HandleFunc("GET /api/products/{idOrSlug}", h.handleGetProduct)
	mux.HandleFunc("GET /api/categories", h.handleListCategories)
	mux.HandleFunc("GET /api/search", h.handleSearch)
	mux.HandleFunc("GET /api/recommendations/similar", h.handleSimilarProducts)
	mux.HandleFunc("GET /api/recommendations/personalized", h.handlePersonalized)
	mux.HandleFunc("GET /api/recommendations/cart-upsells", h.handleCartUpsells)
	mux.HandleFunc("GET /api/admin/products", admin(h.handleAdminListProducts))
	mux.HandleFunc("POST /api/admin/products", admin(h.handleCreateProduct))
	mux.HandleFunc("GET /api/admin/products/{id}", admin(h.handleAdminGetProduct))
	mux.HandleFunc("PUT /api/admin/products/{id}", admin(h.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", admin(h.handleDeleteProduct))
	mux.HandleFunc("GET /api/admin/categories", admin(h.handleListCategories))
	mux.HandleFunc("POST /api/admin/categories", admin(h.handleCreateCategory))
	mux.HandleFunc("PUT /api/admin/categories/{id}", admin(h.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/admin/categories/{id}", admin(h.handleDeleteCategory))
	mux.HandleFunc("POST /api/admin/upload", staff(h.handleUpload))

	// Discounts
	mux.HandleFunc("POST /api/discounts/validate", h.handleValidateDiscount)
	mux.HandleFunc("GET /api/discounts/active", h.handleActiveDiscounts)
	mux.HandleFunc("GET /api/admin/discounts", admin(h.handleListDiscounts))
	mux.HandleFunc("POST /api/admin/discounts", admin(h.handleCreateDiscount))
	mux.HandleFunc("GET /api/admin/discounts/{id}", admin(h.handleGetDiscount))
	mux.HandleFunc("PUT /api/admin/discounts/{id}", admin(h.handleUpdateDiscount))
	mux.HandleFunc("DELETE /api/admin/discounts/{id}", admin(h.handleDeleteDiscount))

	// Inventory
	mux.HandleFunc("POST /api/admin/inventory/adjust", admin(h.handleAdjustInventory))
	mux.HandleFunc("GET /api/admin/inventory", staff(h.handleListInventory))
	mux.HandleFunc("GET /api/admin/inventory/alerts", staff(h.handleInventoryAlerts))
	mux.HandleFunc("GET /api/admin/inventory/transactions", staff(h.handleInventoryTransactions))
	mux.HandleFunc("GET /api/admin/inventory/export", admin(h.handleExportInventory))

	// Checkout and orders
	mux.HandleFunc("POST /api/checkout/create-session", h.handleCreateCheckoutSession)
	mux.HandleFunc("POST /api/webhooks/stripe", h.handleStripeWebhook)
	mux.HandleFunc("GET /api/admin/orders", staff(h.handleListOrders))
	mux.HandleFunc("POST /api/admin/orders/bulk", staff(h.handleBulkOrders))
	mux.HandleFunc("GET /api/admin/orders/{id}", staff(h.handleGetOrder))
	mux.HandleFunc("PATCH /api/admin/orders/{id}", staff(h.handleUpdateOrder))
	mux.HandleFunc("POST /api/admin/orders/{id}/notes", staff(h.handleAddOrderNote))
	mux.HandleFunc("GET /api/admin/orders/{id}/timeline", staff(h.handleOrderTimeline))
	mux.HandleFunc("GET /api/admin/orders/{id}/invoice", staff(h.handleOrderInvoice))
	mux.HandleFunc("GET /api/admin/returns", staff(h.handleListReturns))
	mux.HandleFunc("POST /api/admin/returns", staff(h.handleCreateReturn))
	mux.HandleFunc("GET /api/admin/returns/{id}", staff(h.handleGetReturn))
	mux.HandleFunc("PATCH /api/admin/returns/{id}", staff(h.handleUpdateReturn))
	mux.HandleFunc("DELETE /api/admin/returns/{id}", admin(h.handleDeleteReturn))

	// Reviews
	mux.HandleFunc("GET /api/products/{id}/reviews", h.handleProductReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.handleSubmitReview)
	mux.HandleFunc("GET /api/reviews", h.handleReviewHighlights)
	mux.HandleFunc("GET /api/admin/reviews", staff(h.handleListReviews))
	mux.HandleFunc("POST /api/admin/reviews", staff(h.handleModerateReview))

	// Blog
	mux.HandleFunc("GET /api/blog", h.handleListPublishedPosts)
	mux.HandleFunc("GET /api/blog/{slug}", h.handleGetPublishedPost)
	mux.HandleFunc("GET /api/admin/blog", staff(h.handleListPosts))
	mux.HandleFunc("POST /api/admin/blog", staff(h.handleCreatePost))
	mux.HandleFunc("GET /api/admin/blog/{id}", staff(h.handleGetPost))
	mux.HandleFunc("PUT /api/admin/blog/{id}", staff(h.handleUpdatePost))
	mux.HandleFunc("DELETE /api/admin/blog/{id}", staff(h.handleDeletePost))
	mux.HandleFunc("POST /api/admin/blog/{id}/publish", staff(h.handlePublishPost))
	mux.HandleFunc("POST /api/admin/ai/generate-blog", staff(h.handleGenerateBlog))

	// Newsletter
	mux.HandleFunc("POST /api/newsletter/subscribe", h.handleSubscribe)
	mux.HandleFunc("POST /api/newsletter/unsubscribe", h.handleUnsubscribe)
	mux.HandleFunc("GET /api/admin/subscribers", admin(h.handleListSubscribers))
	mux.HandleFunc("DELETE /api/admin/subscribers/{id}", admin(h.handleDeleteSubscriber))

	// Marketing
	mux.HandleFunc("POST /api/ai/generate-email", staff(h.handleGenerateEmail))
	mux.HandleFunc("POST /api/admin/ai-marketing/generate-social-post", staff(h.handleGenerateSocialPost))
	mux.HandleFunc("POST /api/admin/ai-marketing/schedule-post", staff(h.handleSchedulePost))
	mux.HandleFunc("GET /api/admin/ai-marketing/schedule-post", staff(h.handleListScheduledPosts))
	mux.HandleFunc("GET /api/admin/email-campaigns", admin(h.handleListCampaigns))
	mux.HandleFunc("POST /api/admin/email-campaigns", admin(h.handleCreateCampaign))
	mux.HandleFunc("POST /api/admin/email-campaigns/{id}/send", admin(h.handleSendCampaign))

	// Marine
	mux.HandleFunc("GET /api/marine/weather", h.handleMarineWeather)
	mux.HandleFunc("GET /api/marine/conditions", h.handleMarineConditions)
	mux.HandleFunc("GET /api/marine/tides", h.handleMarineTides)

	// Admin operations
	mux.HandleFunc("GET /api/settings", h.handlePublicSettings)
	mux.HandleFunc("GET /api/admin/settings", admin(h.handleGetSettings))
	mux.HandleFunc("PUT /api/admin/settings", admin(h.handleUpdateSettings))
	mux.HandleFunc("POST /api/admin/sync/database", admin(h.handleRunSync))
	mux.HandleFunc("GET /api/admin/sync/database", admin(h.handleSyncStatus))
	mux.HandleFunc("GET /api/admin/staff", admin(h.handleListStaff))
	mux.HandleFunc("POST /api/admin/staff", admin(h.handleCreateStaff))
	mux.HandleFunc("PATCH /api/admin/staff/{id}", admin(h.handleUpdateStaff))
	mux.HandleFunc("DELETE /api/admin/staff/{id}", admin(h.handleDeleteStaff))
	mux.HandleFunc("GET /api/admin/analytics/overview", staff(h.handleAnalyticsOverview))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
