package models

import (
	"time"
)

// User model - customers, support agents and admins share one table
type User struct {
	ID                 int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Email              *string    `gorm:"uniqueIndex" json:"email"`
	Phone              *string    `gorm:"uniqueIndex" json:"phone"`
	Name               string     `gorm:"not null" json:"name"`
	Password           *string    `json:"-"` // Don't expose password in JSON
	Role               Role       `gorm:"type:text;not null" json:"role"`
	GoogleID           *string    `gorm:"uniqueIndex" json:"-"`
	IsVerified         bool       `json:"isVerified"`
	IsActive           bool       `json:"isActive"`
	AvatarURL          *string    `json:"avatarUrl"`
	TwoFactorSecret    *string    `json:"-"` // Don't expose secret
	TwoFactorEnabled   bool       `json:"twoFactorEnabled"`
	TwoFactorEnabledAt *time.Time `json:"twoFactorEnabledAt,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Addresses    []Address         `gorm:"foreignKey:UserID" json:"addresses,omitempty"`
	DeviceTokens []UserDeviceToken `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the user can sign in with a password
func (u User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// Address model - a saved shipping address
type Address struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;index" json:"userId"`
	FullName  string    `gorm:"not null" json:"fullName"`
	Phone     string    `gorm:"not null" json:"phone"`
	Line1     string    `gorm:"not null" json:"line1"`
	Line2     string    `json:"line2"`
	Landmark  string    `json:"landmark"`
	City      string    `gorm:"not null" json:"city"`
	State     string    `gorm:"not null" json:"state"`
	Pincode   string    `gorm:"not null" json:"pincode"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Address model
func (Address) TableName() string {
	return "addresses"
}

// UserDeviceToken model - FCM registration tokens
type UserDeviceToken struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;index" json:"userId"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for UserDeviceToken model
func (UserDeviceToken) TableName() string {
	return "user_device_tokens"
}

// Category model
type Category struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	ParentID    *int      `gorm:"index" json:"parentId"`
	IsActive    bool      `json:"isActive"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Category model
func (Category) TableName() string {
	return "categories"
}

// Product model
type Product struct {
	ID                int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Slug              string    `gorm:"not null;uniqueIndex" json:"slug"`
	Description       string    `json:"description"`
	Brand             string    `gorm:"index" json:"brand"`
	PetType           PetType   `gorm:"type:text;not null;index" json:"petType"`
	CategoryID        int       `gorm:"not null;index" json:"categoryId"`
	Price             float64   `gorm:"not null" json:"price"`
	CompareAtPrice    *float64  `json:"compareAtPrice"`
	Inventory         int       `gorm:"not null" json:"inventory"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	ImageURL          *string   `json:"imageUrl"`
	IsActive          bool      `gorm:"index" json:"isActive"`
	RatingAverage     float64   `json:"ratingAverage"`
	RatingCount       int       `json:"ratingCount"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}

// InStock reports whether at least one unit can be sold
func (p Product) InStock() bool {
	return p.IsActive && p.Inventory > 0
}

// Pincode model - a postal code registered as deliverable
type Pincode struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string    `gorm:"not null;uniqueIndex" json:"code"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	DeliveryCharge float64   `json:"deliveryCharge"`
	DeliveryDays   int       `json:"deliveryDays"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for Pincode model
func (Pincode) TableName() string {
	return "pincodes"
}
