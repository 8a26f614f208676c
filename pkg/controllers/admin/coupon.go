package admin

import (
	"net/http"
	"strings"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type couponRequest struct {
	Code          string     `json:"code"`
	Description   *string    `json:"description"`
	DiscountType  string     `json:"discountType" binding:"omitempty,oneof=PERCENT FLAT"`
	Value         *float64   `json:"value"`
	MaxDiscount   *float64   `json:"maxDiscount"`
	MinOrderValue *float64   `json:"minOrderValue" binding:"omitempty,min=0"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidUntil    *time.Time `json:"validUntil"`
	UsageLimit    *int       `json:"usageLimit" binding:"omitempty,min=0"`
	PerUserLimit  *int       `json:"perUserLimit" binding:"omitempty,min=0"`
	IsActive      *bool      `json:"isActive"`
}

func (r couponRequest) apply(coupon *models.Coupon) {
	if code := strings.ToUpper(strings.TrimSpace(r.Code)); code != "" {
		coupon.Code = code
	}
	if r.Description != nil {
		coupon.Description = *r.Description
	}
	if r.DiscountType != "" {
		coupon.DiscountType = models.DiscountType(r.DiscountType)
	}
	if r.Value != nil {
		coupon.Value = *r.Value
	}
	if r.MaxDiscount != nil {
		coupon.MaxDiscount = r.MaxDiscount
	}
	if r.MinOrderValue != nil {
		coupon.MinOrderValue = *r.MinOrderValue
	}
	if r.ValidFrom != nil {
		coupon.ValidFrom = *r.ValidFrom
	}
	if r.ValidUntil != nil {
		coupon.ValidUntil = *r.ValidUntil
	}
	if r.UsageLimit != nil {
		coupon.UsageLimit = *r.UsageLimit
	}
	if r.PerUserLimit != nil {
		coupon.PerUserLimit = *r.PerUserLimit
	}
	if r.IsActive != nil {
		coupon.IsActive = *r.IsActive
	}
}

// validateCoupon checks the discount value and validity window
func validateCoupon(coupon models.Coupon) string {
	switch {
	case coupon.Code == "":
		return "code is required"
	case coupon.DiscountType == models.DiscountTypePercent && (coupon.Value < 1 || coupon.Value > 100):
		return "percent discounts must be between 1 and 100"
	case coupon.DiscountType == models.DiscountTypeFlat && coupon.Value <= 0:
		return "flat discounts must be greater than 0"
	case coupon.DiscountType != models.DiscountTypePercent && coupon.DiscountType != models.DiscountTypeFlat:
		return "discountType must be PERCENT or FLAT"
	case coupon.MaxDiscount != nil && *coupon.MaxDiscount <= 0:
		return "maxDiscount must be greater than 0"
	case coupon.ValidFrom.IsZero() || coupon.ValidUntil.IsZero():
		return "validFrom and validUntil are required"
	case !coupon.ValidUntil.After(coupon.ValidFrom):
		return "validUntil must be after validFrom"
	}
	return ""
}

// ListCoupons returns every coupon, newest first
func ListCoupons(c *gin.Context) {
	var coupons []models.Coupon
	query := database.DB.Order("created_at DESC, id DESC")
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if err := query.Find(&coupons).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, coupons, "Coupons fetched successfully")
}

// CreateCoupon adds a promotion code
func CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "code, discountType, value, validFrom and validUntil are required"})
		return
	}

	coupon := models.Coupon{IsActive: true}
	req.apply(&coupon)
	if msg := validateCoupon(coupon); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	if err := database.DB.Create(&coupon).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, coupon, "Coupon created successfully")
}

// UpdateCoupon changes the provided fields and revalidates the result
func UpdateCoupon(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid coupon payload"})
		return
	}

	var coupon models.Coupon
	if err := database.DB.First(&coupon, id).Error; err != nil {
		respondError(c, notFound("Coupon"))
		return
	}
	req.apply(&coupon)
	if msg := validateCoupon(coupon); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	if err := database.DB.Save(&coupon).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, coupon, "Coupon updated successfully")
}

// DeleteCoupon removes an unused coupon; a redeemed one is deactivated instead
func DeleteCoupon(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var coupon models.Coupon
	if err := database.DB.First(&coupon, id).Error; err != nil {
		respondError(c, notFound("Coupon"))
		return
	}

	var usages int64
	database.DB.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&usages)
	if usages > 0 || coupon.UsedCount > 0 {
		if err := database.DB.Model(&coupon).Update("is_active", false).Error; err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"id": coupon.ID, "isActive": false}, "Coupon has been used and was deactivated instead")
		return
	}

	if err := database.DB.Delete(&coupon).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "Coupon deleted successfully")
}
