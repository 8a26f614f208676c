package customer

import (
	"errors"
	"net/http"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxLineQuantity caps how many units of one product a cart line may hold
const MaxLineQuantity = 10

type cartLineResult struct {
	ProductID int  `json:"productId"`
	Quantity  int  `json:"quantity"`
	Requested int  `json:"requested"`
	Clamped   bool `json:"clamped"`
}

// setCartLine upserts the (user, product) line. With add, quantity is added to
// the current line. The result is clamped to stock and MaxLineQuantity.
func setCartLine(tx *gorm.DB, userID, productID, quantity int, add bool) (cartLineResult, error) {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cartLineResult{}, errProductNotFound
		}
		return cartLineResult{}, err
	}
	if !product.IsActive {
		return cartLineResult{}, errProductNotFound
	}
	if product.Inventory <= 0 {
		return cartLineResult{}, errOutOfStock
	}

	requested := quantity
	if add {
		var existing models.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
		if err == nil {
			requested += existing.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return cartLineResult{}, err
		}
	}

	final := min(requested, product.Inventory, MaxLineQuantity)
	line := models.CartItem{UserID: userID, ProductID: productID, Quantity: final}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": final, "updated_at": time.Now()}),
	}).Create(&line).Error
	if err != nil {
		return cartLineResult{}, err
	}

	return cartLineResult{ProductID: productID, Quantity: final, Requested: requested, Clamped: final < requested}, nil
}

// GetCart returns the cart priced at current product prices
func GetCart(c *gin.Context) {
	user := currentUser(c)

	var lines []models.CartItem
	if err := database.DB.Preload("Product").Where("user_id = ?", user.ID).Order("id ASC").Find(&lines).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(lines))
	subtotal := 0.0
	count := 0
	for _, line := range lines {
		available := line.Product.Inventory
		if !line.Product.IsActive {
			available = 0
		}
		fulfillable := min(line.Quantity, available)
		lineTotal := utils.RoundMoney(line.Product.Price * float64(fulfillable))
		subtotal += lineTotal
		count += fulfillable

		items = append(items, gin.H{
			"productId": line.ProductID,
			"quantity":  line.Quantity,
			"available": available,
			"clamped":   fulfillable < line.Quantity,
			"unitPrice": line.Product.Price,
			"lineTotal": lineTotal,
			"product":   line.Product,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"itemCount": count,
		"subtotal":  utils.RoundMoney(subtotal),
	})
}

// AddToCart adds quantity to the product's line
func AddToCart(c *gin.Context) {
	var req struct {
		ProductID int `json:"productId" binding:"required,gt=0"`
		Quantity  int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId and a positive quantity are required"})
		return
	}

	user := currentUser(c)
	var result cartLineResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = setCartLine(tx, user.ID, req.ProductID, req.Quantity, true)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Product added to cart"
	if result.Clamped {
		message = "Quantity adjusted to available stock"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "item": result})
}

// SetCartQuantity replaces the line quantity; zero removes the line
func SetCartQuantity(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "quantity must be zero or more"})
		return
	}

	user := currentUser(c)
	if *req.Quantity == 0 {
		if err := database.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.CartItem{}).Error; err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
		return
	}

	var result cartLineResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = setCartLine(tx, user.ID, productID, *req.Quantity, false)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart updated", "item": result})
}

// RemoveCartItem deletes one line
func RemoveCartItem(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	user := currentUser(c)

	res := database.DB.Where("user_id = ? AND product_id = ?", user.ID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Item not found in cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart deletes every line
func ClearCart(c *gin.Context) {
	user := currentUser(c)
	if err := database.DB.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
