package customer

import (
	"net/http"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PreviewCoupon validates a coupon against the current cart without redeeming it
func PreviewCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "code is required"})
		return
	}

	user := currentUser(c)
	var lines []models.CartItem
	if err := database.DB.Preload("Product").Where("user_id = ?", user.ID).Find(&lines).Error; err != nil {
		respondError(c, err)
		return
	}
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		return
	}

	subtotal := 0.0
	for _, line := range lines {
		subtotal += line.Product.Price * float64(line.Quantity)
	}
	subtotal = utils.RoundMoney(subtotal)

	coupon, discount, err := services.EvaluateCoupon(database.DB, req.Code, user.ID, subtotal, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":        coupon.Code,
		"description": coupon.Description,
		"subtotal":    subtotal,
		"discount":    discount,
	})
}

// ListAvailableCoupons shows active coupons inside their validity window
func ListAvailableCoupons(c *gin.Context) {
	now := time.Now()
	var coupons []models.Coupon
	if err := database.DB.
		Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Where("usage_limit = 0 OR used_count < usage_limit").
		Order("valid_until ASC").
		Find(&coupons).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}
