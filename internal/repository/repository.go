package repository

import (
	"context"
	"errors"
	"time"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint or stream version check fails.
	ErrConflict = errors.New("record conflict")
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Page
	CategorySlug    string
	Featured        *bool
	Query           string
	InStock         bool
	IncludeInactive bool
}

// ReturnFilter narrows return listings. Query matches the return number, the
// customer or the order number.
type ReturnFilter struct {
	Page
	Status entity.ReturnStatus
	Query  string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Page
	Status entity.OrderStatus
	Query  string
	UserID string
}

// UserFilter narrows user listings.
type UserFilter struct {
	Page
	Roles []entity.Role
	Query string
}

// VariantFilter narrows inventory listings. A nil MaxStock lists every variant.
type VariantFilter struct {
	MaxStock *int
	Query    string
}

// ReviewFilter narrows review listings. Status is pending, approved, rejected or empty.
type ReviewFilter struct {
	ProductID string
	Status    string
	Rating    int
	Limit     int
}

// ReviewSummary counts reviews per moderation state.
type ReviewSummary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

// UserRepository handles persistence for accounts and their reward balances.
type UserRepository interface {
	// Create inserts the user together with any nested reward account and point transactions.
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, f UserFilter) ([]entity.User, int64, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role entity.Role) (int64, error)
	PointHistory(ctx context.Context, userID string) ([]entity.PointTransaction, error)
}

// CategoryRepository handles persistence for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
	FindByID(ctx context.Context, id string) (*entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	// Delete fails with ErrConflict while products still reference the category.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository handles persistence for products and their variants.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int64, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	FindVariant(ctx context.Context, id string) (*entity.ProductVariant, error)
	Create(ctx context.Context, p *entity.Product) error
	// Update saves product columns and reconciles variants: matched by ID are updated,
	// new ones inserted, missing ones removed.
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountVariants(ctx context.Context) (int64, error)
	// Seed inserts categories and products if the catalog is empty.
	Seed(ctx context.Context, categories []entity.Category, products []entity.Product) error
}

// InventoryRepository handles stock counters and the inventory ledger.
type InventoryRepository interface {
	// Adjust locks the variant, computes the new stock with apply, saves it and records
	// txn in one transaction.
	Adjust(ctx context.Context, variantID string, apply func(current int) (int, error), txn *entity.InventoryTransaction) (int, error)
	ListVariants(ctx context.Context, f VariantFilter) ([]entity.ProductVariant, error)
	ListTransactions(ctx context.Context, variantID string, limit int) ([]entity.InventoryTransaction, error)
	CountTransactions(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
}

// DiscountRepository handles persistence for discount codes and their usages.
type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.DiscountCode, error)
	FindByID(ctx context.Context, id string) (*entity.DiscountCode, error)
	List(ctx context.Context) ([]entity.DiscountCode, error)
	Create(ctx context.Context, d *entity.DiscountCode) error
	Update(ctx context.Context, d *entity.DiscountCode) error
	Delete(ctx context.Context, id string) error
	CountUsages(ctx context.Context, discountID string) (int64, error)
	CountCustomerUsages(ctx context.Context, discountID, email string) (int64, error)
	UsageCounts(ctx context.Context) (map[string]int64, error)
}

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	// CreateFromCheckout inserts the order, its items, SALE ledger entries, stock
	// decrements, the discount usage and the reward credit in one transaction. An order
	// already stored under the same payment reference is returned with created=false.
	CreateFromCheckout(ctx context.Context, o *entity.Order) (order *entity.Order, created bool, err error)
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, f OrderFilter) ([]entity.Order, int64, error)
	Update(ctx context.Context, o *entity.Order) error
	AddNote(ctx context.Context, n *entity.OrderNote) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error)
	// Revenue sums totals of orders that were not cancelled.
	Revenue(ctx context.Context, since time.Time) (float64, error)
	// BoughtWith counts, per other product, how many of the latest recentOrders orders
	// containing productID also contained it. basis is the number of orders examined.
	BoughtWith(ctx context.Context, productID string, recentOrders int) (counts []ProductCount, basis int, err error)
}

// ProductCount is a product and how many orders it appeared in.
type ProductCount struct {
	ProductID string
	N         int64
}

// ReturnRepository handles persistence for return requests.
type ReturnRepository interface {
	// Create stores r with its items and assigns its return number.
	Create(ctx context.Context, r *entity.Return) error
	FindByID(ctx context.Context, id string) (*entity.Return, error)
	List(ctx context.Context, f ReturnFilter) ([]entity.Return, int64, error)
	CountByStatus(ctx context.Context) (map[entity.ReturnStatus]int64, error)
	// Update saves the return's columns and the condition and restockable flag of its items.
	Update(ctx context.Context, r *entity.Return) error
	// Restock puts every restockable item back into stock with a RESTOCK ledger row.
	// It runs at most once per return and reports the units restocked; a second call
	// returns 0. Items whose variant no longer exists are skipped.
	Restock(ctx context.Context, id string, userID *string, at time.Time) (int, error)
	Delete(ctx context.Context, id string) error
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventRecord, error)
	StreamVersion(ctx context.Context, streamID string) (int, error)
}

// ReviewRepository handles persistence for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *entity.ProductReview) error
	FindByID(ctx context.Context, id string) (*entity.ProductReview, error)
	List(ctx context.Context, f ReviewFilter) ([]entity.ProductReview, error)
	Update(ctx context.Context, r *entity.ProductReview) error
	Delete(ctx context.Context, id string) error
	// Rating returns the average and count of approved reviews for a product.
	Rating(ctx context.Context, productID string) (float64, int64, error)
	Summary(ctx context.Context) (ReviewSummary, error)
}

// BlogRepository handles persistence for blog posts.
type BlogRepository interface {
	List(ctx context.Context, status entity.PostStatus, p Page) ([]entity.BlogPost, int64, error)
	FindByID(ctx context.Context, id string) (*entity.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*entity.BlogPost, error)
	Create(ctx context.Context, b *entity.BlogPost) error
	Update(ctx context.Context, b *entity.BlogPost) error
	Delete(ctx context.Context, id string) error
}

// SubscriberRepository handles persistence for newsletter subscribers.
type SubscriberRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.NewsletterSubscriber, error)
	FindByID(ctx context.Context, id string) (*entity.NewsletterSubscriber, error)
	// List filters by active when non-nil.
	List(ctx context.Context, active *bool) ([]entity.NewsletterSubscriber, error)
	Create(ctx context.Context, s *entity.NewsletterSubscriber) error
	Update(ctx context.Context, s *entity.NewsletterSubscriber) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int64, error)
}

// CampaignRepository handles persistence for email campaigns.
type CampaignRepository interface {
	List(ctx context.Context) ([]entity.EmailCampaign, error)
	FindByID(ctx context.Context, id string) (*entity.EmailCampaign, error)
	Create(ctx context.Context, c *entity.EmailCampaign) error
	Update(ctx context.Context, c *entity.EmailCampaign) error
	// Claim moves a DRAFT campaign to SENDING. It fails with ErrConflict when the
	// campaign is no longer a draft.
	Claim(ctx context.Context, id string) error
	// Release returns a claimed campaign to DRAFT.
	Release(ctx context.Context, id string) error
}

// SocialPostRepository handles persistence for scheduled social posts.
type SocialPostRepository interface {
	Create(ctx context.Context, p *entity.SocialMediaPost) error
	// List returns posts in the given states ordered by scheduled time.
	List(ctx context.Context, statuses []string, limit int) ([]entity.SocialMediaPost, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]entity.SocialMediaPost, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// SettingsRepository handles the singleton site settings row.
type SettingsRepository interface {
	// Get returns the settings row, creating it with defaults on first use.
	Get(ctx context.Context) (*entity.SiteSettings, error)
	Save(ctx context.Context, s *entity.SiteSettings) error
	TouchSync(ctx context.Context, at time.Time) error
}
