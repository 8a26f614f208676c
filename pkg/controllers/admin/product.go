package admin

import (
	"net/http"
	"strconv"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type productRequest struct {
	Name              string   `json:"name" binding:"omitempty,min=2,max=160"`
	Description       string   `json:"description"`
	Brand             string   `json:"brand"`
	PetType           string   `json:"petType" binding:"omitempty,oneof=DOG CAT BIRD FISH SMALL_PET ALL"`
	CategoryID        int      `json:"categoryId" binding:"omitempty,gt=0"`
	Price             float64  `json:"price" binding:"omitempty,gt=0"`
	CompareAtPrice    *float64 `json:"compareAtPrice"`
	Inventory         *int     `json:"inventory" binding:"omitempty,min=0"`
	LowStockThreshold *int     `json:"lowStockThreshold" binding:"omitempty,min=0"`
	IsActive          *bool    `json:"isActive"`
}

// ListProducts returns all products for the back office, including inactive ones
func ListProducts(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Product{})

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}
	if category := c.Query("category"); category != "" {
		categoryID, err := strconv.Atoi(category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("lowStock") == "true" {
		query = query.Where("inventory <= low_stock_threshold")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var products []models.Product
	if err := query.Preload("Category").Order("id DESC").Scopes(page.Scope).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, products, total, page)
}

// GetProduct returns one product with its category
func GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := database.DB.Preload("Category").First(&product, id).Error; err != nil {
		respondError(c, notFound("Product"))
		return
	}
	utils.SuccessResponse(c, product, "")
}

// CreateProduct adds a product; slug comes from the name
func CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.CategoryID == 0 || req.Price <= 0 || req.PetType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, petType, categoryId and a positive price are required"})
		return
	}

	var category models.Category
	if err := database.DB.First(&category, req.CategoryID).Error; err != nil {
		respondError(c, notFound("Category"))
		return
	}

	product := models.Product{IsActive: true, LowStockThreshold: 5}
	copier.CopyWithOption(&product, &req, copier.Option{IgnoreEmpty: true})
	product.Name = strings.TrimSpace(req.Name)
	product.Slug = utils.Slugify(product.Name)
	product.PetType = models.PetType(req.PetType)
	product.Price = utils.RoundMoney(req.Price)

	if err := database.DB.Create(&product).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, product, "Product created successfully")
}

// UpdateProduct applies the non-empty fields of the request
func UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product payload"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		respondError(c, notFound("Product"))
		return
	}
	if req.CategoryID != 0 {
		var count int64
		database.DB.Model(&models.Category{}).Where("id = ?", req.CategoryID).Count(&count)
		if count == 0 {
			respondError(c, notFound("Category"))
			return
		}
	}

	copier.CopyWithOption(&product, &req, copier.Option{IgnoreEmpty: true})
	if name := strings.TrimSpace(req.Name); name != "" {
		product.Name = name
		product.Slug = utils.Slugify(name)
	}
	if req.PetType != "" {
		product.PetType = models.PetType(req.PetType)
	}
	product.Price = utils.RoundMoney(product.Price)

	if err := database.DB.Omit("Category").Save(&product).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product, "Product updated successfully")
}

// DeleteProduct hides a product from the storefront; order history keeps referencing it
func DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := database.DB.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, notFound("Product"))
		return
	}
	utils.SuccessResponse(c, nil, "Product deactivated successfully")
}

// AdjustInventory adds delta units to stock, refusing to go below zero
func AdjustInventory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Delta  *int   `json:"delta" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || *req.Delta == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "delta must be a non-zero integer"})
		return
	}

	var product models.Product
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return notFound("Product")
		}
		res := tx.Model(&models.Product{}).
			Where("id = ? AND inventory + ? >= 0", id, *req.Delta).
			Update("inventory", gorm.Expr("inventory + ?", *req.Delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflict("Inventory cannot go below zero")
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("product_id", product.ID).Int("delta", *req.Delta).Int("inventory", product.Inventory).
		Str("reason", req.Reason).Int("admin_id", currentAdmin(c).ID).Msg("inventory adjusted")
	utils.SuccessResponse(c, product, "Inventory updated")
}

// UploadProductImage stores a product photo and replaces the previous one
func UploadProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		respondError(c, notFound("Product"))
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}
	url, err := services.UploadMultipartImage(c.Request.Context(), file, "products")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := database.DB.Model(&product).Update("image_url", url).Error; err != nil {
		respondError(c, err)
		return
	}
	if product.ImageURL != nil && services.Images != nil {
		if err := services.Images.Delete(c.Request.Context(), *product.ImageURL); err != nil {
			log.Warn().Err(err).Int("product_id", product.ID).Msg("old product image not deleted")
		}
	}
	product.ImageURL = &url
	utils.SuccessResponse(c, product, "Image uploaded")
}
