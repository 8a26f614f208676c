package customer

import (
	"errors"
	"net/http"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errOrderNotFound = &httpError{Status: http.StatusNotFound, Message: "Order not found"}

func loadOwnOrder(tx *gorm.DB, userID, orderID int) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the user's orders, newest first
func ListOrders(c *gin.Context) {
	user := currentUser(c)
	page := utils.ParsePage(c)

	query := database.DB.Model(&models.Order{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total, "page": page.Page, "limit": page.Limit})
}

// GetOrder returns one of the user's orders with its items
func GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := loadOwnOrder(database.DB, currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels a PENDING or CONFIRMED order
func CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)

	var order *models.Order
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOwnOrder(tx, user.ID, id)
		if err != nil {
			return err
		}
		if !services.CanCancel(order.Status) {
			return &httpError{Status: http.StatusConflict, Message: "Order can no longer be cancelled"}
		}
		return services.CancelOrder(c.Request.Context(), tx, order)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("order_id", order.ID).Str("payment_status", string(order.PaymentStatus)).Msg("order cancelled by customer")
	services.NotifyOrderStatusAsync(database.DB, *order)
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

// PayOrder retries the gateway order for an unpaid online order
func PayOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := loadOwnOrder(database.DB, currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if order.PaymentMethod != models.PaymentMethodOnline || order.Status != models.OrderStatusPending ||
		order.PaymentStatus == models.PaymentStatusPaid {
		c.JSON(http.StatusConflict, gin.H{"message": "Order is not awaiting online payment"})
		return
	}

	payment, err := initiatePayment(c.Request.Context(), order)
	if err != nil {
		if errors.Is(err, services.ErrPaymentsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Online payments are not available"})
			return
		}
		log.Error().Err(err).Int("order_id", order.ID).Msg("payment retry failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Payment could not be started"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "payment": payment})
}

// VerifyPayment checks the gateway signature and confirms the order
func VerifyPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
		RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
		RazorpaySignature string `json:"razorpaySignature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "razorpayOrderId, razorpayPaymentId and razorpaySignature are required"})
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)
	order, err := loadOwnOrder(database.DB, user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if order.PaymentMethod != models.PaymentMethodOnline {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order is not an online payment order"})
		return
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		c.JSON(http.StatusOK, gin.H{"message": "Payment already verified", "order": order})
		return
	}
	if order.RazorpayOrderID == nil || *order.RazorpayOrderID != req.RazorpayOrderID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payment does not belong to this order"})
		return
	}

	if !services.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, config.AppConfig.RazorpayKeySecret) {
		if err := database.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			log.Error().Err(err).Int("order_id", order.ID).Msg("failed to mark payment as failed")
		}
		log.Warn().Int("order_id", order.ID).Msg("payment signature mismatch")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payment verification failed"})
		return
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paymentStatus := models.PaymentStatusPaid
		if order.Status == models.OrderStatusCancelled {
			paymentStatus = models.PaymentStatusRefundPending
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_status":      paymentStatus,
			"razorpay_payment_id": req.RazorpayPaymentID,
			"updated_at":          time.Now(),
		}).Error; err != nil {
			return err
		}
		order.PaymentStatus = paymentStatus
		order.RazorpayPaymentID = &req.RazorpayPaymentID

		if order.Status == models.OrderStatusPending {
			return services.UpdateOrderStatus(ctx, tx, order, models.OrderStatusConfirmed)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("order_id", order.ID).Str("payment_id", req.RazorpayPaymentID).Msg("payment verified")
	if order.Status == models.OrderStatusConfirmed {
		services.NotifyOrderStatusAsync(database.DB, *order)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "order": order})
}
