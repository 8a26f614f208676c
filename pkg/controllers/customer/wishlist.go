package customer

import (
	"net/http"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetWishlist lists saved products
func GetWishlist(c *gin.Context) {
	user := currentUser(c)

	var items []models.WishlistItem
	if err := database.DB.Preload("Product").Where("user_id = ?", user.ID).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AddToWishlist saves a product; saving it twice is a no-op
func AddToWishlist(c *gin.Context) {
	var req struct {
		ProductID int `json:"productId" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId is required"})
		return
	}

	var product models.Product
	if err := database.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	user := currentUser(c)
	item := models.WishlistItem{UserID: user.ID, ProductID: product.ID}
	if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to wishlist"})
}

// RemoveFromWishlist deletes a saved product
func RemoveFromWishlist(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	user := currentUser(c)

	res := database.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found in wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

// MoveToCart adds one unit to the cart and drops the wishlist entry
func MoveToCart(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	user := currentUser(c)

	var result cartLineResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &httpError{Status: http.StatusNotFound, Message: "Item not found in wishlist"}
		}
		var err error
		result, err = setCartLine(tx, user.ID, productID, 1, true)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Moved to cart", "item": result})
}
