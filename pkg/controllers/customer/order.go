package customer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PlaceOrder converts the cart into an order, optionally starting an online payment
func PlaceOrder(c *gin.Context) {
	var req struct {
		AddressID     int    `json:"addressId" binding:"required,gt=0"`
		PaymentMethod string `json:"paymentMethod" binding:"required,oneof=COD ONLINE"`
		CouponCode    string `json:"couponCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "addressId and paymentMethod (COD or ONLINE) are required"})
		return
	}

	user := currentUser(c)
	result, err := services.PlaceOrder(c.Request.Context(), database.DB, services.PlaceOrderInput{
		UserID:         user.ID,
		AddressID:      req.AddressID,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		CouponCode:     strings.TrimSpace(req.CouponCode),
		IdempotencyKey: strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader)),
	}, config.AppConfig.FreeDeliveryThreshold)
	if err != nil {
		respondError(c, err)
		return
	}

	order := result.Order
	if result.Replayed {
		c.JSON(http.StatusOK, gin.H{"message": "Order already placed", "order": order})
		return
	}

	log.Info().Int("order_id", order.ID).Str("order_number", order.OrderNumber).
		Str("payment_method", string(order.PaymentMethod)).Float64("total", order.Total).
		Msg("order placed")

	if order.PaymentMethod == models.PaymentMethodOnline {
		payment, err := initiatePayment(c.Request.Context(), &order)
		if err != nil {
			log.Error().Err(err).Int("order_id", order.ID).Msg("payment gateway order failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"message": "Order created but payment could not be started. Retry payment from your orders.",
				"order":   order,
			})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order created", "order": order, "payment": payment})
		return
	}

	services.NotifyOrderStatusAsync(database.DB, order)
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// initiatePayment opens a gateway order for an online order and stores its id
func initiatePayment(ctx context.Context, order *models.Order) (gin.H, error) {
	gatewayOrder, err := services.CreatePaymentOrder(ctx, order.Total, order.OrderNumber, map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
	})
	if err != nil {
		return nil, err
	}
	if gatewayOrder.ID == "" {
		return nil, errors.New("gateway returned an empty order id")
	}

	if err := database.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
		Update("razorpay_order_id", gatewayOrder.ID).Error; err != nil {
		return nil, err
	}
	order.RazorpayOrderID = &gatewayOrder.ID

	return gin.H{
		"keyId":           config.AppConfig.RazorpayKeyID,
		"razorpayOrderId": gatewayOrder.ID,
		"amount":          gatewayOrder.Amount,
		"currency":        gatewayOrder.Currency,
	}, nil
}
