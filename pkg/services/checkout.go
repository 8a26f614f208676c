package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutError carries the HTTP status and message for a rejected checkout step
type CheckoutError struct {
	Status  int
	Message string
	Details interface{}
}

func (e *CheckoutError) Error() string {
	return e.Message
}

func checkoutErr(status int, format string, args ...interface{}) *CheckoutError {
	return &CheckoutError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// StockShortage describes one cart line that cannot be fulfilled
type StockShortage struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// PlaceOrderInput is a checkout request for the user's current cart
type PlaceOrderInput struct {
	UserID         int
	AddressID      int
	PaymentMethod  models.PaymentMethod
	CouponCode     string
	IdempotencyKey string
}

// PlaceOrderResult is the created order, or the earlier order for a repeated idempotency key
type PlaceOrderResult struct {
	Order    models.Order
	Replayed bool
}

// NewOrderNumber returns PS-YYYYMMDD-XXXXXX
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PS-%s-%s", now.Format("20060102"), suffix)
}

func scopedIdempotencyKey(userID int, key string) string {
	return strconv.Itoa(userID) + ":" + key
}

func findByIdempotencyKey(ctx context.Context, db *gorm.DB, userID int, key string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Preload("Items").
		Where("idempotency_key = ?", scopedIdempotencyKey(userID, key)).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeliveryChargeFor waives the pincode charge once the discounted subtotal reaches threshold
func DeliveryChargeFor(pincode models.Pincode, discountedSubtotal, threshold float64) float64 {
	if threshold > 0 && discountedSubtotal >= threshold {
		return 0
	}
	return pincode.DeliveryCharge
}

// PlaceOrder turns the user's cart into an order inside one transaction.
// Stock is checked against current inventory and decremented with a guarded
// update; any failure rolls back the whole order.
func PlaceOrder(ctx context.Context, db *gorm.DB, in PlaceOrderInput, freeDeliveryThreshold float64) (*PlaceOrderResult, error) {
	if in.IdempotencyKey != "" {
		if existing, err := findByIdempotencyKey(ctx, db, in.UserID, in.IdempotencyKey); err == nil {
			return &PlaceOrderResult{Order: *existing, Replayed: true}, nil
		}
	}

	now := time.Now()
	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		if err := tx.Preload("Product").Where("user_id = ?", in.UserID).Order("id ASC").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return checkoutErr(http.StatusBadRequest, "Cart is empty")
		}

		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", in.AddressID, in.UserID).First(&address).Error; err != nil {
			return checkoutErr(http.StatusNotFound, "Address not found")
		}

		var pincode models.Pincode
		if err := tx.Where("code = ? AND is_active = ?", address.Pincode, true).First(&pincode).Error; err != nil {
			return checkoutErr(http.StatusUnprocessableEntity, "Pincode not serviceable")
		}

		var shortages []StockShortage
		subtotal := 0.0
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			p := line.Product
			if !p.IsActive {
				return checkoutErr(http.StatusConflict, "%s is no longer available", p.Name)
			}
			if line.Quantity > p.Inventory {
				shortages = append(shortages, StockShortage{ProductID: p.ID, Name: p.Name, Requested: line.Quantity, Available: p.Inventory})
				continue
			}
			lineTotal := utils.RoundMoney(p.Price * float64(line.Quantity))
			subtotal += lineTotal
			items = append(items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
		}
		if len(shortages) > 0 {
			return &CheckoutError{Status: http.StatusConflict, Message: "Insufficient stock", Details: shortages}
		}
		subtotal = utils.RoundMoney(subtotal)

		var coupon *models.Coupon
		discount := 0.0
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			c, d, err := EvaluateCoupon(tx, code, in.UserID, subtotal, now)
			if err != nil {
				return err
			}
			coupon, discount = c, d
		}

		delivery := DeliveryChargeFor(pincode, subtotal-discount, freeDeliveryThreshold)

		order = models.Order{
			OrderNumber:    NewOrderNumber(now),
			UserID:         in.UserID,
			PaymentMethod:  in.PaymentMethod,
			PaymentStatus:  models.PaymentStatusPending,
			Subtotal:       subtotal,
			Discount:       discount,
			DeliveryCharge: delivery,
			Total:          utils.RoundMoney(subtotal - discount + delivery),
			ShipName:       address.FullName,
			ShipPhone:      address.Phone,
			ShipLine1:      address.Line1,
			ShipLine2:      address.Line2,
			ShipCity:       address.City,
			ShipState:      address.State,
			ShipPincode:    address.Pincode,
			DeliveryDays:   pincode.DeliveryDays,
		}
		if in.PaymentMethod == models.PaymentMethodCOD {
			order.Status = models.OrderStatusConfirmed
		} else {
			order.Status = models.OrderStatusPending
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
			order.CouponCode = &coupon.Code
		}
		if in.IdempotencyKey != "" {
			key := scopedIdempotencyKey(in.UserID, in.IdempotencyKey)
			order.IdempotencyKey = &key
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items

		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND inventory >= ?", item.ProductID, item.Quantity).
				Update("inventory", gorm.Expr("CASE WHEN inventory >= ? THEN inventory - ? ELSE 0 END", item.Quantity, item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &CheckoutError{
					Status:  http.StatusConflict,
					Message: "Insufficient stock",
					Details: []StockShortage{{ProductID: item.ProductID, Name: item.ProductName, Requested: item.Quantity}},
				}
			}
		}

		if coupon != nil {
			if err := redeemCoupon(tx, coupon, in.UserID, order.ID, discount); err != nil {
				return err
			}
		}

		return tx.Where("user_id = ?", in.UserID).Delete(&models.CartItem{}).Error
	})

	if err != nil {
		if in.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lookupErr := findByIdempotencyKey(ctx, db, in.UserID, in.IdempotencyKey); lookupErr == nil {
				return &PlaceOrderResult{Order: *existing, Replayed: true}, nil
			}
		}
		return nil, err
	}

	return &PlaceOrderResult{Order: order}, nil
}

// EvaluateCoupon validates code for the user and returns the discount on subtotal
func EvaluateCoupon(tx *gorm.DB, code string, userID int, subtotal float64, now time.Time) (*models.Coupon, float64, error) {
	var coupon models.Coupon
	if err := tx.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&coupon).Error; err != nil {
		return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "Coupon not found")
	}
	if !coupon.IsActive {
		return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "Coupon is not active")
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "Coupon has expired or is not yet valid")
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "Coupon usage limit reached")
	}
	if coupon.PerUserLimit > 0 {
		var used int64
		if err := tx.Model(&models.CouponUsage{}).Where("coupon_id = ? AND user_id = ?", coupon.ID, userID).Count(&used).Error; err != nil {
			return nil, 0, err
		}
		if int(used) >= coupon.PerUserLimit {
			return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "You have already used this coupon")
		}
	}
	if subtotal < coupon.MinOrderValue {
		return nil, 0, checkoutErr(http.StatusUnprocessableEntity, "Minimum order value for this coupon is %.2f", coupon.MinOrderValue)
	}

	return &coupon, CouponDiscount(coupon, subtotal), nil
}

// CouponDiscount computes the discount, capped by maxDiscount and by subtotal
func CouponDiscount(coupon models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercent:
		discount = subtotal * coupon.Value / 100
		if coupon.MaxDiscount != nil && *coupon.MaxDiscount > 0 && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
	case models.DiscountTypeFlat:
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return utils.RoundMoney(discount)
}

func redeemCoupon(tx *gorm.DB, coupon *models.Coupon, userID, orderID int, amount float64) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", coupon.ID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return checkoutErr(http.StatusUnprocessableEntity, "Coupon usage limit reached")
	}
	return tx.Create(&models.CouponUsage{CouponID: coupon.ID, UserID: userID, OrderID: orderID, Amount: amount}).Error
}

// CancelOrder restocks items, releases the coupon and moves a paid order to refund pending
func CancelOrder(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if err := TransitionOrder(ctx, order.Status, models.OrderStatusCancelled); err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.OrderStatusCancelled,
		"cancelled_at": now,
	}
	paymentStatus := order.PaymentStatus
	if order.PaymentStatus == models.PaymentStatusPaid {
		paymentStatus = models.PaymentStatusRefundPending
		updates["payment_status"] = paymentStatus
	}

	res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}

	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("inventory", gorm.Expr("inventory + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}

	if order.CouponID != nil {
		res := tx.Where("order_id = ?", order.ID).Delete(&models.CouponUsage{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&models.Coupon{}).Where("id = ? AND used_count > 0", *order.CouponID).
				Update("used_count", gorm.Expr("used_count - 1")).Error; err != nil {
				return err
			}
		}
	}

	order.Status = models.OrderStatusCancelled
	order.PaymentStatus = paymentStatus
	order.CancelledAt = &now
	return nil
}

// UpdateOrderStatus moves an order through the lifecycle; cancellation restocks
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, order *models.Order, target models.OrderStatus) error {
	if target == models.OrderStatusCancelled {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return CancelOrder(ctx, tx, order)
		})
	}

	if err := TransitionOrder(ctx, order.Status, target); err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}
	switch target {
	case models.OrderStatusShipped:
		updates["shipped_at"] = now
		order.ShippedAt = &now
	case models.OrderStatusDelivered:
		updates["delivered_at"] = now
		order.DeliveredAt = &now
		if order.PaymentMethod == models.PaymentMethodCOD {
			updates["payment_status"] = models.PaymentStatusPaid
			order.PaymentStatus = models.PaymentStatusPaid
		}
	}

	res := db.WithContext(ctx).Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}
	order.Status = target
	return nil
}

// RecomputeProductRating refreshes ratingAverage and ratingCount from approved reviews
func RecomputeProductRating(tx *gorm.DB, productID int) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"rating_average": utils.RoundMoney(agg.Avg),
		"rating_count":   agg.Count,
	}).Error
}
