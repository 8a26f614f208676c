package models

import (
	"time"
)

// CartItem model - one line per (user, product)
type CartItem struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID int       `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
}

// TableName specifies the table name for CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// WishlistItem model
type WishlistItem struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"userId"`
	ProductID int       `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"productId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
}

// TableName specifies the table name for WishlistItem model
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// Order model
type Order struct {
	ID                int           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber       string        `gorm:"not null;uniqueIndex" json:"orderNumber"`
	UserID            int           `gorm:"not null;index" json:"userId"`
	Status            OrderStatus   `gorm:"type:text;not null;index" json:"status"`
	PaymentMethod     PaymentMethod `gorm:"type:text;not null" json:"paymentMethod"`
	PaymentStatus     PaymentStatus `gorm:"type:text;not null" json:"paymentStatus"`
	Subtotal          float64       `gorm:"not null" json:"subtotal"`
	Discount          float64       `json:"discount"`
	DeliveryCharge    float64       `json:"deliveryCharge"`
	Total             float64       `gorm:"not null" json:"total"`
	CouponID          *int          `json:"couponId"`
	CouponCode        *string       `json:"couponCode"`
	IdempotencyKey    *string       `gorm:"uniqueIndex" json:"-"`
	RazorpayOrderID   *string       `gorm:"index" json:"razorpayOrderId"`
	RazorpayPaymentID *string       `json:"razorpayPaymentId"`
	ShipName          string        `json:"shipName"`
	ShipPhone         string        `json:"shipPhone"`
	ShipLine1         string        `json:"shipLine1"`
	ShipLine2         string        `json:"shipLine2"`
	ShipCity          string        `json:"shipCity"`
	ShipState         string        `json:"shipState"`
	ShipPincode       string        `json:"shipPincode"`
	DeliveryDays      int           `json:"deliveryDays"`
	ShippedAt         *time.Time    `json:"shippedAt"`
	DeliveredAt       *time.Time    `json:"deliveredAt"`
	CancelledAt       *time.Time    `json:"cancelledAt"`
	CreatedAt         time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	User  *User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName specifies the table name for Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem model - product name and price are snapshots taken at checkout
type OrderItem struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int     `gorm:"not null;index" json:"orderId"`
	ProductID   int     `gorm:"not null;index" json:"productId"`
	ProductName string  `gorm:"not null" json:"productName"`
	UnitPrice   float64 `gorm:"not null" json:"unitPrice"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	LineTotal   float64 `gorm:"not null" json:"lineTotal"`
}

// TableName specifies the table name for OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Coupon model - promotions redeemable at checkout
type Coupon struct {
	ID            int          `gorm:"primaryKey;autoIncrement" json:"id"`
	Code          string       `gorm:"not null;uniqueIndex" json:"code"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `gorm:"type:text;not null" json:"discountType"`
	Value         float64      `gorm:"not null" json:"value"`
	MaxDiscount   *float64     `json:"maxDiscount"`
	MinOrderValue float64      `json:"minOrderValue"`
	ValidFrom     time.Time    `gorm:"not null" json:"validFrom"`
	ValidUntil    time.Time    `gorm:"not null" json:"validUntil"`
	UsageLimit    int          `json:"usageLimit"`   // 0 means unlimited
	PerUserLimit  int          `json:"perUserLimit"` // 0 means unlimited
	UsedCount     int          `json:"usedCount"`
	IsActive      bool         `json:"isActive"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Coupon model
func (Coupon) TableName() string {
	return "coupons"
}

// CouponUsage model
type CouponUsage struct {
	ID       int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CouponID int       `gorm:"not null;index" json:"couponId"`
	UserID   int       `gorm:"not null;index" json:"userId"`
	OrderID  int       `gorm:"not null;uniqueIndex" json:"orderId"`
	Amount   float64   `gorm:"not null" json:"amount"`
	UsedAt   time.Time `gorm:"autoCreateTime" json:"usedAt"`
}

// TableName specifies the table name for CouponUsage model
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
