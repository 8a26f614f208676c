package models

// Role enum
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSupport  Role = "SUPPORT"
	RoleAdmin    Role = "ADMIN"
)

// PetType enum
type PetType string

const (
	PetTypeDog      PetType = "DOG"
	PetTypeCat      PetType = "CAT"
	PetTypeBird     PetType = "BIRD"
	PetTypeFish     PetType = "FISH"
	PetTypeSmallPet PetType = "SMALL_PET"
	PetTypeAll      PetType = "ALL"
)

// ValidPetType reports whether p is a known pet type
func ValidPetType(p PetType) bool {
	switch p {
	case PetTypeDog, PetTypeCat, PetTypeBird, PetTypeFish, PetTypeSmallPet, PetTypeAll:
		return true
	}
	return false
}

// OrderStatus enum
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod enum
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusFailed        PaymentStatus = "FAILED"
	PaymentStatusRefundPending PaymentStatus = "REFUND_PENDING"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
)

// DiscountType enum
type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFlat    DiscountType = "FLAT"
)

// Priority enum
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// TicketStatus enum
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// CampaignStatus enum
type CampaignStatus string

const (
	CampaignStatusDraft   CampaignStatus = "DRAFT"
	CampaignStatusSending CampaignStatus = "SENDING"
	CampaignStatusSent    CampaignStatus = "SENT"
)

// OTPChannel enum
type OTPChannel string

const (
	OTPChannelEmail OTPChannel = "email"
	OTPChannelSMS   OTPChannel = "sms"
)

// WidgetType enum
type WidgetType string

const (
	WidgetSalesChart     WidgetType = "SALES_CHART"
	WidgetOrdersSummary  WidgetType = "ORDERS_SUMMARY"
	WidgetLowStock       WidgetType = "LOW_STOCK"
	WidgetOpenTickets    WidgetType = "OPEN_TICKETS"
	WidgetPendingReviews WidgetType = "PENDING_REVIEWS"
	WidgetSubscribers    WidgetType = "SUBSCRIBERS"
	WidgetRecentOrders   WidgetType = "RECENT_ORDERS"
)

// ValidWidgetType reports whether t is a widget the dashboard can render
func ValidWidgetType(t WidgetType) bool {
	switch t {
	case WidgetSalesChart, WidgetOrdersSummary, WidgetLowStock, WidgetOpenTickets,
		WidgetPendingReviews, WidgetSubscribers, WidgetRecentOrders:
		return true
	}
	return false
}
