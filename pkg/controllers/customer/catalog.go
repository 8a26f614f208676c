package customer

import (
	"net/http"
	"strconv"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var productSorts = map[string]string{
	"price_asc":  "price ASC, id ASC",
	"price_desc": "price DESC, id ASC",
	"newest":     "created_at DESC, id DESC",
	"rating":     "rating_average DESC, rating_count DESC, id ASC",
}

// ListCategories returns active categories, cached for a few minutes
func ListCategories(c *gin.Context) {
	categories, err := services.Remember(services.CategoriesCacheKey, services.CategoriesTTL, func() ([]models.Category, error) {
		var categories []models.Category
		err := database.DB.Where("is_active = ?", true).Order("sort_order ASC, name ASC").Find(&categories).Error
		return categories, err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListProducts returns active products with filters, sorting and pagination
func ListProducts(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Product{}).Where("products.is_active = ?", true)

	if category := c.Query("category"); category != "" {
		if id, err := strconv.Atoi(category); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			query = query.Where("category_id IN (?)", database.DB.Model(&models.Category{}).Select("id").Where("slug = ?", category))
		}
	}

	if petType := models.PetType(strings.ToUpper(c.Query("petType"))); petType != "" {
		if !models.ValidPetType(petType) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid petType"})
			return
		}
		query = query.Where("pet_type IN ?", []models.PetType{petType, models.PetTypeAll})
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}

	for param, cond := range map[string]string{"minPrice": "price >= ?", "maxPrice": "price <= ?"} {
		if raw := c.Query(param); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + param})
				return
			}
			query = query.Where(cond, v)
		}
	}

	order, ok := productSorts[c.DefaultQuery("sort", "newest")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "sort must be one of price_asc, price_desc, newest, rating"})
		return
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var products []models.Product
	if err := query.Scopes(page.Scope).Order(order).Find(&products).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

// GetProductBySlug returns one active product with its review summary
func GetProductBySlug(c *gin.Context) {
	var product models.Product
	if err := database.DB.Preload("Category").
		Where("slug = ? AND is_active = ?", c.Param("slug"), true).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	var rows []struct {
		Rating int
		Count  int
	}
	database.DB.Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ? AND is_approved = ?", product.ID, true).
		Group("rating").
		Scan(&rows)

	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range rows {
		distribution[r.Rating] = r.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"reviewSummary": gin.H{
			"average":      product.RatingAverage,
			"count":        product.RatingCount,
			"distribution": distribution,
		},
	})
}

// GetProductReviews lists approved reviews for a product, newest first
func GetProductReviews(c *gin.Context) {
	var product models.Product
	if err := database.DB.Select("id").Where("slug = ? AND is_active = ?", c.Param("slug"), true).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Review{}).Where("product_id = ? AND is_approved = ?", product.ID, true).Session(&gorm.Session{})

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "avatar_url")
	}).Scopes(page.Scope).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}
