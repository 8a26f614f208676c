package models

import (
	"time"
)

// Review model
type Review struct {
	ID               int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int       `gorm:"not null;uniqueIndex:idx_review_user_product;index" json:"productId"`
	UserID           int       `gorm:"not null;uniqueIndex:idx_review_user_product" json:"userId"`
	Rating           int       `gorm:"not null" json:"rating"`
	Title            string    `json:"title"`
	Comment          string    `json:"comment"`
	IsApproved       bool      `gorm:"index" json:"isApproved"`
	VerifiedPurchase bool      `json:"verifiedPurchase"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

// TableName specifies the table name for Review model
func (Review) TableName() string {
	return "reviews"
}

// Ticket model - help-desk ticket
type Ticket struct {
	ID             int          `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketNumber   string       `gorm:"index" json:"ticketNumber"`
	UserID         int          `gorm:"not null;index" json:"userId"`
	OrderID        *int         `json:"orderId"`
	Subject        string       `gorm:"not null" json:"subject"`
	Description    string       `gorm:"not null" json:"description"`
	Priority       Priority     `gorm:"type:text;not null" json:"priority"`
	Status         TicketStatus `gorm:"type:text;not null;index" json:"status"`
	ImageURL       *string      `json:"imageUrl"`
	ResolutionNote *string      `json:"resolutionNote"`
	ResolvedAt     *time.Time   `json:"resolvedAt"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	User     *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Messages []TicketMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

// TableName specifies the table name for Ticket model
func (Ticket) TableName() string {
	return "tickets"
}

// TicketMessage model
type TicketMessage struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID   int       `gorm:"not null;index" json:"ticketId"`
	AuthorID   int       `gorm:"not null" json:"authorId"`
	AuthorRole Role      `gorm:"type:text;not null" json:"authorRole"`
	Body       string    `gorm:"not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for TicketMessage model
func (TicketMessage) TableName() string {
	return "ticket_messages"
}

// NewsletterSubscriber model
type NewsletterSubscriber struct {
	ID             int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string     `gorm:"not null;uniqueIndex" json:"email"`
	Token          string     `gorm:"not null;uniqueIndex" json:"-"`
	IsActive       bool       `gorm:"index" json:"isActive"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt"`
}

// TableName specifies the table name for NewsletterSubscriber model
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}

// NewsletterCampaign model
type NewsletterCampaign struct {
	ID           int            `gorm:"primaryKey;autoIncrement" json:"id"`
	Subject      string         `gorm:"not null" json:"subject"`
	BodyMarkdown string         `gorm:"type:text;not null" json:"bodyMarkdown"`
	Status       CampaignStatus `gorm:"type:text;not null" json:"status"`
	SentCount    int            `json:"sentCount"`
	FailedCount  int            `json:"failedCount"`
	LastError    *string        `json:"lastError"`
	CreatedByID  int            `json:"createdById"`
	SentAt       *time.Time     `json:"sentAt"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for NewsletterCampaign model
func (NewsletterCampaign) TableName() string {
	return "newsletter_campaigns"
}

// DashboardWidget model - one panel of an admin's dashboard grid
type DashboardWidget struct {
	ID        int        `gorm:"primaryKey;autoIncrement" json:"-" bson:"-"`
	AdminID   int        `gorm:"not null;uniqueIndex:idx_widget_admin_key" json:"-" bson:"adminId"`
	Key       string     `gorm:"not null;uniqueIndex:idx_widget_admin_key" json:"key" bson:"key"`
	Type      WidgetType `gorm:"type:text;not null" json:"type" bson:"type"`
	X         int        `json:"x" bson:"x"`
	Y         int        `json:"y" bson:"y"`
	W         int        `json:"w" bson:"w"`
	H         int        `json:"h" bson:"h"`
	Visible   bool       `json:"visible" bson:"visible"`
	Settings  JSONMap    `gorm:"type:text" json:"settings,omitempty" bson:"settings,omitempty"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt" bson:"updatedAt"`
}

// TableName specifies the table name for DashboardWidget model
func (DashboardWidget) TableName() string {
	return "dashboard_widgets"
}
