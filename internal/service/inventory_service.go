package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// AdjustInput is a manual stock movement.
type AdjustInput struct {
	VariantID string                `json:"variantId" validate:"required"`
	Type      entity.AdjustmentType `json:"type" validate:"required,oneof=RESTOCK ADJUSTMENT SALE"`
	Quantity  int                   `json:"quantity"`
	Notes     string                `json:"notes,omitempty"`
}

// AdjustResult is the outcome of a stock movement.
type AdjustResult struct {
	Success     bool                         `json:"success"`
	NewStock    int                          `json:"newStock"`
	Transaction *entity.InventoryTransaction `json:"transaction"`
}

// StockAlerts lists variants at or under the low-stock threshold.
type StockAlerts struct {
	Threshold  int                     `json:"threshold"`
	LowStock   []entity.ProductVariant `json:"lowStock"`
	OutOfStock int64                   `json:"outOfStockCount"`
}

// NextStock applies a movement to the current stock counter.
func NextStock(current int, typ entity.AdjustmentType, quantity int) (int, error) {
	var next int
	switch typ {
	case entity.AdjustRestock:
		next = current + quantity
	case entity.AdjustAdjustment:
		next = quantity
	case entity.AdjustSale:
		next = current - quantity
	default:
		return 0, invalid("Invalid adjustment type")
	}
	if next < 0 {
		return 0, invalid("Stock cannot be negative")
	}
	return next, nil
}

// InventoryService adjusts stock counters and reads the inventory ledger.
type InventoryService struct {
	inventory repository.InventoryRepository
	log       *zap.Logger
	threshold int
}

func NewInventoryService(inventory repository.InventoryRepository, log *zap.Logger, lowStockThreshold int) *InventoryService {
	return &InventoryService{inventory: inventory, log: log, threshold: lowStockThreshold}
}

// Adjust moves stock for one variant and records the ledger entry atomically.
func (s *InventoryService) Adjust(ctx context.Context, in AdjustInput, userID string) (*AdjustResult, error) {
	if err := check(in, "Invalid adjustment data"); err != nil {
		return nil, err
	}

	notes := in.Notes
	if notes == "" {
		notes = fmt.Sprintf("%s adjustment", in.Type)
	}
	txn := &entity.InventoryTransaction{
		Type:     in.Type,
		Quantity: abs(in.Quantity),
		Notes:    notes,
	}
	if userID != "" {
		txn.UserID = &userID
	}

	newStock, err := s.inventory.Adjust(ctx, in.VariantID, func(current int) (int, error) {
		return NextStock(current, in.Type, in.Quantity)
	}, txn)
	if err != nil {
		return nil, orNotFound(err, "Variant not found")
	}

	s.log.Info("Stock adjusted",
		zap.String("variant_id", in.VariantID),
		zap.String("type", string(in.Type)),
		zap.Int("quantity", in.Quantity),
		zap.Int("new_stock", newStock),
	)
	return &AdjustResult{Success: true, NewStock: newStock, Transaction: txn}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Variants lists variants with their product. lowStock keeps those at or under the threshold.
func (s *InventoryService) Variants(ctx context.Context, lowStock bool, query string) ([]entity.ProductVariant, error) {
	f := repository.VariantFilter{Query: query}
	if lowStock {
		f.MaxStock = &s.threshold
	}
	return s.inventory.ListVariants(ctx, f)
}

func (s *InventoryService) Alerts(ctx context.Context) (*StockAlerts, error) {
	low, err := s.inventory.ListVariants(ctx, repository.VariantFilter{MaxStock: &s.threshold})
	if err != nil {
		return nil, err
	}
	out, err := s.inventory.CountOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	return &StockAlerts{Threshold: s.threshold, LowStock: low, OutOfStock: out}, nil
}

// Transactions returns the newest ledger entries, optionally for one variant.
func (s *InventoryService) Transactions(ctx context.Context, variantID string, limit int) ([]entity.InventoryTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.inventory.ListTransactions(ctx, variantID, limit)
}

// ExportCSV writes every variant as a CSV row.
func (s *InventoryService) ExportCSV(ctx context.Context, w io.Writer) error {
	variants, err := s.inventory.ListVariants(ctx, repository.VariantFilter{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Product", "Variant", "SKU", "Size", "Color", "Price", "Stock", "Status"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, v := range variants {
		product := ""
		if v.Product != nil {
			product = v.Product.Name
		}
		status := "In Stock"
		switch {
		case v.Stock == 0:
			status = "Out of Stock"
		case v.Stock <= s.threshold:
			status = "Low Stock"
		}
		row := []string{
			product, v.Name, v.SKU, v.Size, v.Color,
			strconv.FormatFloat(v.Price, 'f', 2, 64),
			strconv.Itoa(v.Stock),
			status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
