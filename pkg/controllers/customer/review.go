package customer

import (
	"errors"
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReview records a pending review; one per user and product
func CreateReview(c *gin.Context) {
	var req struct {
		ProductID int    `json:"productId" binding:"required,gt=0"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Title     string `json:"title" binding:"max=120"`
		Comment   string `json:"comment" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId and a rating between 1 and 5 are required"})
		return
	}

	user := currentUser(c)
	var product models.Product
	if err := database.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		respondError(c, errProductNotFound)
		return
	}

	var delivered int64
	if err := database.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?", user.ID, models.OrderStatusDelivered, product.ID).
		Count(&delivered).Error; err != nil {
		respondError(c, err)
		return
	}

	review := models.Review{
		ProductID:        product.ID,
		UserID:           user.ID,
		Rating:           req.Rating,
		Title:            strings.TrimSpace(req.Title),
		Comment:          strings.TrimSpace(req.Comment),
		VerifiedPurchase: delivered > 0,
	}
	if err := database.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "You have already reviewed this product"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted for moderation", "review": review})
}

// ListMyReviews returns the user's reviews with their products
func ListMyReviews(c *gin.Context) {
	var reviews []models.Review
	if err := database.DB.Preload("Product").Where("user_id = ?", currentUser(c).ID).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// DeleteMyReview removes one of the user's reviews and refreshes the product rating
func DeleteMyReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&review).Error; err != nil {
			return &httpError{Status: http.StatusNotFound, Message: "Review not found"}
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return services.RecomputeProductRating(tx, review.ProductID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
