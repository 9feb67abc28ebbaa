package entity

// Category groups products on the storefront.
type Category struct {
	Model
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:1024" json:"image"`
}

// Product represents a product in the store.
type Product struct {
	Model
	Name                   string           `gorm:"size:255;not null" json:"name"`
	Slug                   string           `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	SKU                    string           `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Description            string           `gorm:"type:text" json:"description"`
	BasePrice              float64          `gorm:"not null" json:"basePrice"`
	Featured               bool             `gorm:"index;not null;default:false" json:"featured"`
	IsActive               bool             `gorm:"not null" json:"isActive"`
	ConservationPercentage float64          `gorm:"not null" json:"conservationPercentage"`
	ConservationFocus      string           `gorm:"size:255" json:"conservationFocus"`
	ImageURL               string           `gorm:"size:1024" json:"imageUrl"`
	CategoryID             *string          `gorm:"size:36;index" json:"categoryId,omitempty"`
	Category               *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants               []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
}

// TotalStock sums the stock of every variant.
func (p Product) TotalStock() int {
	var n int
	for _, v := range p.Variants {
		n += v.Stock
	}
	return n
}

// ProductVariant is a purchasable SKU-level configuration of a product.
type ProductVariant struct {
	Model
	ProductID string   `gorm:"size:36;index;not null" json:"productId"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name      string   `gorm:"size:255;not null" json:"name"`
	SKU       string   `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Price     float64  `gorm:"not null" json:"price"`
	Stock     int      `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Size      string   `gorm:"size:50" json:"size,omitempty"`
	Color     string   `gorm:"size:50" json:"color,omitempty"`
	Material  string   `gorm:"size:100" json:"material,omitempty"`
	ImageURL  string   `gorm:"size:1024" json:"imageUrl,omitempty"`
}

// AdjustmentType is the kind of stock movement recorded in the inventory ledger.
type AdjustmentType string

const (
	AdjustRestock    AdjustmentType = "RESTOCK"
	AdjustAdjustment AdjustmentType = "ADJUSTMENT"
	AdjustSale       AdjustmentType = "SALE"
)

// InventoryTransaction is one entry of the inventory ledger.
type InventoryTransaction struct {
	Model
	VariantID string          `gorm:"size:36;index;not null" json:"variantId"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE" json:"variant,omitempty"`
	Type      AdjustmentType  `gorm:"size:20;not null" json:"type"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Notes     string          `gorm:"size:500" json:"notes"`
	UserID    *string         `gorm:"size:36" json:"userId,omitempty"`
}
