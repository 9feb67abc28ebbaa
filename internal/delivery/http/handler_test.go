package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/cache"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/mail"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/marine"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository/postgres"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

type testAPI struct {
	handler http.Handler
	svc     Services
}

func newTestAPI(t *testing.T, endpoints marine.Endpoints) *testAPI {
	t.Helper()
	db, err := postgres.Open(sqlite.Open("file::memory:?_foreign_keys=on"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.Migrate(context.Background(), db))

	log := zap.NewNop()
	mailer := mail.NewLogMailer(log)
	var pub nopPublisher

	users := postgres.NewUserRepository(db)
	orders := postgres.NewOrderRepository(db)
	products := postgres.NewProductRepository(db)
	categories := postgres.NewCategoryRepository(db)
	inventory := postgres.NewInventoryRepository(db)
	settings := postgres.NewSettingsRepository(db)
	subscribers := postgres.NewSubscriberRepository(db)
	events := postgres.NewEventStore(db)
	discounts := service.NewDiscountService(postgres.NewDiscountRepository(db), log)

	svc := Services{
		Auth:       service.NewAuthService(users, orders, mailer, log, "test-secret", time.Hour, "https://shop.example"),
		Catalog:    service.NewCatalogService(products, categories, nil, log),
		Discounts:  discounts,
		Inventory:  service.NewInventoryService(inventory, log, 10),
		Checkout:   service.NewCheckoutService(products, orders, events, settings, discounts, nil, pub, log, "https://shop.example"),
		Orders:     service.NewOrderService(orders, events, settings, pub, log),
		Returns:    service.NewReturnService(postgres.NewReturnRepository(db), orders, log),
		Recommend:  service.NewRecommendationService(products, orders),
		Reviews:    service.NewReviewService(postgres.NewReviewRepository(db), products, log),
		Blog:       service.NewBlogService(postgres.NewBlogRepository(db), nil, log),
		Newsletter: service.NewNewsletterService(subscribers, mailer, log, "https://shop.example"),
		Marketing: service.NewMarketingService(nil, postgres.NewSocialPostRepository(db), postgres.NewCampaignRepository(db),
			subscribers, mailer, pub, log, "https://shop.example", 2),
		Sync:      service.NewSyncService(categories, products, orders, inventory, users, settings, log),
		Settings:  service.NewSettingsService(settings, log),
		Staff:     service.NewStaffService(users, log),
		Analytics: service.NewAnalyticsService(orders, users, subscribers, inventory, 10),
		Marine:    marine.NewClient(cache.NewMemory(), log, endpoints),
	}
	h := NewHandler(svc, log, "https://shop.example")
	return &testAPI{handler: h.Routes([]string{"https://shop.example"}), svc: svc}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) tokenFor(t *testing.T, role entity.Role) string {
	t.Helper()
	ctx := context.Background()
	email := strings.ToLower(string(role)) + "@lapesqueria.com"
	if role == entity.RoleCustomer {
		_, err := a.svc.Auth.Register(ctx, service.RegisterInput{Email: email, Password: "password123", Name: "Casey"})
		require.NoError(t, err)
	} else {
		_, err := a.svc.Staff.Create(ctx, service.StaffInput{Email: email, Name: "Pat", Password: "password123", Role: role}, "")
		require.NoError(t, err)
	}
	token, _, err := a.svc.Auth.Login(ctx, email, "password123")
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	rec := api.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRoleGating(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	customer := api.tokenFor(t, entity.RoleCustomer)
	staffer := api.tokenFor(t, entity.RoleStaff)
	adm := api.tokenFor(t, entity.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous admin route", http.MethodGet, "/api/admin/discounts", "", http.StatusUnauthorized},
		{"customer on admin route", http.MethodGet, "/api/admin/discounts", customer, http.StatusUnauthorized},
		{"staff on admin-only route", http.MethodGet, "/api/admin/discounts", staffer, http.StatusUnauthorized},
		{"admin on admin route", http.MethodGet, "/api/admin/discounts", adm, http.StatusOK},
		{"customer on staff route", http.MethodGet, "/api/admin/orders", customer, http.StatusUnauthorized},
		{"staff on staff route", http.MethodGet, "/api/admin/orders", staffer, http.StatusOK},
		{"admin on staff route", http.MethodGet, "/api/admin/orders", adm, http.StatusOK},
		{"anonymous account", http.MethodGet, "/api/account", "", http.StatusUnauthorized},
		{"customer account", http.MethodGet, "/api/account", customer, http.StatusOK},
		{"garbage token", http.MethodGet, "/api/account", "not-a-token", http.StatusUnauthorized},
		{"public catalog", http.MethodGet, "/api/products", "", http.StatusOK},
		{"customer on returns", http.MethodGet, "/api/admin/returns", customer, http.StatusUnauthorized},
		{"staff on returns", http.MethodGet, "/api/admin/returns", staffer, http.StatusOK},
		{"staff deleting a return", http.MethodDelete, "/api/admin/returns/any", staffer, http.StatusUnauthorized},
		{"admin deleting a missing return", http.MethodDelete, "/api/admin/returns/any", adm, http.StatusNotFound},
		{"similar without product", http.MethodGet, "/api/recommendations/similar", "", http.StatusBadRequest},
		{"similar for unknown product", http.MethodGet, "/api/recommendations/similar?productId=nope", "", http.StatusOK},
		{"upsells without product", http.MethodGet, "/api/recommendations/cart-upsells", "", http.StatusBadRequest},
		{"upsells for unknown product", http.MethodGet, "/api/recommendations/cart-upsells?productId=nope", "", http.StatusOK},
		{"personalized anonymous", http.MethodGet, "/api/recommendations/personalized", "", http.StatusOK},
		{"personalized customer", http.MethodGet, "/api/recommendations/personalized", customer, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", decodeBody(t, rec)["error"])
			}
		})
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	rec := api.do(t, http.MethodPost, "/api/auth/register", "", `{"email":"Angler@Example.com","password":"password123","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"angler@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookies[0])
	sess := httptest.NewRecorder()
	api.handler.ServeHTTP(sess, req)
	require.Equal(t, http.StatusOK, sess.Code)
	user, ok := decodeBody(t, sess)["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "angler@example.com", user["email"])
	assert.Equal(t, "CUSTOMER", user["role"])

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"angler@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["error"])
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	adm := api.tokenFor(t, entity.RoleAdmin)

	t.Run("malformed body", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/auth/register", "", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeBody(t, rec)["error"])
	})

	t.Run("field details", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/admin/discounts", adm, `{"code":"X","type":"PERCENTAGE","value":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		details, ok := decodeBody(t, rec)["details"].([]any)
		require.True(t, ok)
		assert.NotEmpty(t, details)
	})

	t.Run("not found", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/blog/no-such-post", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		body := `{"email":"dup@example.com","password":"password123","name":"Dup"}`
		require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/auth/register", "", body).Code)
		rec := api.do(t, http.MethodPost, "/api/auth/register", "", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "User with this email already exists", decodeBody(t, rec)["error"])
	})

	t.Run("payments unconfigured", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/checkout/create-session", "", `{"items":[]}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Payment processing is not currently available. Stripe is not configured.", decodeBody(t, rec)["error"])
	})

	t.Run("ai unconfigured", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/ai/generate-email", adm, `{"topic":"summer sale"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "AI is not configured (Missing API Key)", decodeBody(t, rec)["error"])
	})
}

func TestStaffCannotDeleteSelf(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	adm := api.tokenFor(t, entity.RoleAdmin)
	claims, err := api.svc.Auth.ParseToken(adm)
	require.NoError(t, err)

	rec := api.do(t, http.MethodDelete, "/api/admin/staff/"+claims.UserID, adm, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/admin/staff", adm, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats, ok := decodeBody(t, rec)["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, stats["admins"])
}

func TestSyncStatus(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	adm := api.tokenFor(t, entity.RoleAdmin)
	api.tokenFor(t, entity.RoleCustomer)

	rec := api.do(t, http.MethodPost, "/api/admin/sync/database", adm, `{"type":"full"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	results, ok := body["results"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, results["customers"])
	assert.NotNil(t, body["nextSyncAvailable"])

	rec = api.do(t, http.MethodGet, "/api/admin/sync/database", adm, "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody(t, rec)
	assert.Equal(t, false, status["syncInProgress"])
	assert.NotNil(t, status["lastSync"])
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wide := EnableCORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	wide.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := &Handler{log: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}

func TestMarineTides(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8775870", r.URL.Query().Get("station"))
		fmt.Fprint(w, `{"predictions":[
			{"t":"2024-05-01 00:00","v":"0.2"},{"t":"2024-05-01 06:00","v":"1.1"},
			{"t":"2024-05-01 12:00","v":"0.1"}]}`)
	}))
	defer upstream.Close()
	api := newTestAPI(t, marine.Endpoints{Tides: upstream.URL})

	rec := api.do(t, http.MethodGet, "/api/marine/tides?station=8775870&days=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, marineCacheControl, rec.Header().Get("Cache-Control"))
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "8775870", data["station"])
}

func TestMarineUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()
	api := newTestAPI(t, marine.Endpoints{NWS: upstream.URL})

	rec := api.do(t, http.MethodGet, "/api/marine/weather", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Cache-Control"))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestMarineRejectsMalformedLocation(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()
	api := newTestAPI(t, marine.Endpoints{NWS: upstream.URL, Tides: upstream.URL, Marine: upstream.URL, Weather: upstream.URL})

	tests := []struct {
		name string
		path string
	}{
		{"path segment in lat", "/api/marine/weather?lat=26/../alerts&lon=-97"},
		{"latitude out of range", "/api/marine/weather?lat=91&lon=-97"},
		{"longitude not a number", "/api/marine/conditions?lat=26&lon=west"},
		{"station with letters", "/api/marine/tides?station=87a9748"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tt.path, "", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Zero(t, calls)
}

func TestPublicSettingsHideSyncState(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	adm := api.tokenFor(t, entity.RoleAdmin)

	rec := api.do(t, http.MethodPost, "/api/admin/sync/database", adm, `{"type":"full"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/admin/settings", adm, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "lastSyncAt")

	rec = api.do(t, http.MethodGet, "/api/settings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotContains(t, body, "lastSyncAt")
	assert.NotContains(t, body, "id")
	assert.NotContains(t, body, "updatedAt")
	assert.Contains(t, body, "siteName")
	assert.Contains(t, body, "taxRate")
}

func TestSimilarProducts(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	ctx := context.Background()
	tees, err := api.svc.Catalog.CreateCategory(ctx, service.CategoryInput{Name: "Tees", Slug: "tees"})
	require.NoError(t, err)
	create := func(slug string, price float64) string {
		p, err := api.svc.Catalog.CreateProduct(ctx, service.ProductInput{
			Name: slug, Slug: slug, SKU: slug, BasePrice: price, CategoryID: tees.ID,
			Description:       "reef safe cotton tee",
			ConservationFocus: "Sea Turtles",
			Variants:          []service.VariantInput{{Name: "M", SKU: slug + "-m", Price: price, Stock: 5}},
		})
		require.NoError(t, err)
		return p.ID
	}
	source := create("turtle-tee", 30)
	create("turtle-tank", 32)
	create("turtle-hat", 31)

	rec := api.do(t, http.MethodGet, "/api/recommendations/similar?productId="+source+"&limit=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["count"])
	recs := body["recommendations"].([]any)
	require.Len(t, recs, 1)
	first := recs[0].(map[string]any)
	assert.Equal(t, "turtle-hat", first["slug"])
	assert.Equal(t, "Matches your style • Similar price range • Supports Sea Turtles", first["reason"])
}

func TestPersonalizedFallsBackToFeatured(t *testing.T) {
	api := newTestAPI(t, marine.Endpoints{})
	_, err := api.svc.Catalog.CreateProduct(context.Background(), service.ProductInput{
		Name: "Gift Card", Slug: "gift-card", SKU: "gift-card", BasePrice: 50, Featured: true,
		Variants: []service.VariantInput{{Name: "Digital", SKU: "gift-card-d", Price: 50, Stock: 100}},
	})
	require.NoError(t, err)

	rec := api.do(t, http.MethodGet, "/api/recommendations/personalized", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["personalized"])
	recs := body["recommendations"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "Featured product", recs[0].(map[string]any)["reason"])
}
