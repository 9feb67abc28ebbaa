package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository backed by gorm.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateFromCheckout(ctx context.Context, o *entity.Order) (*entity.Order, bool, error) {
	// Idempotency check
	existing, err := r.findByReference(ctx, o.PaymentReference)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.OrderNumber = entity.ShortID(o.ID)
	if o.Status == "" {
		o.Status = entity.OrderPending
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Notes").Create(o).Error; err != nil {
			return fmt.Errorf("failed to insert order: %w", translate(err))
		}

		for _, item := range o.Items {
			res := tx.Model(&entity.ProductVariant{}).Where("id = ?", item.VariantID).
				Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", item.Quantity, item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for %s: %w", item.VariantID, res.Error)
			}
			// The variant was deleted after the session was created; keep the order.
			if res.RowsAffected == 0 {
				continue
			}
			sale := entity.InventoryTransaction{
				VariantID: item.VariantID,
				Type:      entity.AdjustSale,
				Quantity:  item.Quantity,
				Notes:     "Order " + o.OrderNumber,
				UserID:    o.UserID,
			}
			if err := tx.Create(&sale).Error; err != nil {
				return fmt.Errorf("failed to record sale: %w", err)
			}
		}

		if o.DiscountCodeID != nil && exists(tx, &entity.DiscountCode{}, *o.DiscountCodeID) {
			usage := entity.DiscountUsage{
				DiscountID:    *o.DiscountCodeID,
				OrderID:       o.ID,
				UserID:        o.UserID,
				CustomerEmail: strings.ToLower(o.CustomerEmail),
				Amount:        o.Discount,
			}
			if err := tx.Create(&usage).Error; err != nil {
				return fmt.Errorf("failed to record discount usage: %w", err)
			}
		}

		if o.UserID != nil && exists(tx, &entity.User{}, *o.UserID) {
			if err := creditPurchase(tx, *o.UserID, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent delivery of the same webhook won the insert.
		if errors.Is(err, repository.ErrConflict) {
			if existing, findErr := r.findByReference(ctx, o.PaymentReference); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return o, true, nil
}

// exists reports whether a row with id is present; references in a paid session can
// outlive the rows they point at.
func exists(tx *gorm.DB, model any, id string) bool {
	var n int64
	return tx.Model(model).Where("id = ?", id).Count(&n).Error == nil && n > 0
}

func creditPurchase(tx *gorm.DB, userID string, o *entity.Order) error {
	var reward entity.CustomerReward
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reward, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		reward = entity.CustomerReward{UserID: userID}
		if err := tx.Create(&reward).Error; err != nil {
			return fmt.Errorf("failed to create reward account: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load reward account: %w", err)
	}

	err = tx.Model(&reward).Updates(map[string]any{
		"points":       gorm.Expr("points + ?", entity.PurchasePoints),
		"total_spent":  gorm.Expr("total_spent + ?", o.Total),
		"total_orders": gorm.Expr("total_orders + 1"),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to credit reward account: %w", err)
	}

	orderID := o.ID
	pt := entity.PointTransaction{
		RewardID:    reward.ID,
		Points:      entity.PurchasePoints,
		Type:        entity.PointsPurchase,
		Description: "Purchase " + o.OrderNumber,
		OrderID:     &orderID,
	}
	if err := tx.Create(&pt).Error; err != nil {
		return fmt.Errorf("failed to record point transaction: %w", err)
	}
	return nil
}

func (r *orderRepository) findByReference(ctx context.Context, ref string) (*entity.Order, error) {
	var o entity.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "payment_reference = ?", ref).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, f repository.OrderFilter) ([]entity.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Query != "" {
		s := like(strings.ToLower(f.Query))
		q = q.Where("LOWER(customer_email) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(order_number) LIKE ?", s, s, s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []entity.Order
	if err := paginate(q.Preload("Items").Order("created_at DESC"), f.Page).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepository) Update(ctx context.Context, o *entity.Order) error {
	res := r.db.WithContext(ctx).Model(o).Omit(clause.Associations).
		Select("status", "tracking_number", "carrier", "shipped_at", "delivered_at", "updated_at").
		Updates(o)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepository) AddNote(ctx context.Context, n *entity.OrderNote) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error) {
	var rows []struct {
		Status entity.OrderStatus
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	counts := make(map[entity.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func (r *orderRepository) Revenue(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	q := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("COALESCE(SUM(total), 0)").Where("status <> ?", entity.OrderCancelled)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

func (r *orderRepository) BoughtWith(ctx context.Context, productID string, recentOrders int) ([]repository.ProductCount, int, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("EXISTS (SELECT 1 FROM order_items oi JOIN product_variants pv ON pv.id = oi.variant_id "+
			"WHERE oi.order_id = orders.id AND pv.product_id = ?)", productID).
		Order("orders.created_at DESC").Limit(recentOrders).Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders with product: %w", err)
	}
	if len(ids) == 0 {
		return nil, 0, nil
	}

	var counts []repository.ProductCount
	err = r.db.WithContext(ctx).Table("order_items AS oi").
		Select("pv.product_id AS product_id, COUNT(DISTINCT oi.order_id) AS n").
		Joins("JOIN product_variants pv ON pv.id = oi.variant_id").
		Where("oi.order_id IN ? AND pv.product_id <> ?", ids, productID).
		Group("pv.product_id").Order("n DESC, pv.product_id").Scan(&counts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count co-purchases: %w", err)
	}
	return counts, len(ids), nil
}
