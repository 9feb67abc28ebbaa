package entity

// Role is the session role carried in auth tokens.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// User is a customer or a back-office account.
type User struct {
	Model
	Email    string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name     string          `gorm:"size:255" json:"name"`
	Password string          `gorm:"size:255;not null" json:"-"`
	Role     Role            `gorm:"size:20;index;not null;default:CUSTOMER" json:"role"`
	Reward   *CustomerReward `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"rewards,omitempty"`
}

// PointType classifies a rewards ledger entry.
type PointType string

const (
	PointsSignup     PointType = "SIGNUP"
	PointsPurchase   PointType = "PURCHASE"
	PointsAdjustment PointType = "ADJUSTMENT"
)

const (
	// SignupBonusPoints are granted when a customer registers.
	SignupBonusPoints = 100
	// PurchasePoints are granted per completed checkout for signed-in customers.
	PurchasePoints = 4
)

// CustomerReward is the rewards account attached to a customer.
type CustomerReward struct {
	Model
	UserID       string             `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Points       int                `gorm:"not null;default:0" json:"points"`
	TotalSpent   float64            `gorm:"not null;default:0" json:"totalSpent"`
	TotalOrders  int                `gorm:"not null;default:0" json:"totalOrders"`
	Transactions []PointTransaction `gorm:"foreignKey:RewardID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// PointTransaction is one rewards ledger entry.
type PointTransaction struct {
	Model
	RewardID    string    `gorm:"size:36;index;not null" json:"rewardId"`
	Points      int       `gorm:"not null" json:"points"`
	Type        PointType `gorm:"size:20;not null" json:"type"`
	Description string    `gorm:"size:500" json:"description"`
	OrderID     *string   `gorm:"size:36;index" json:"orderId,omitempty"`
}
