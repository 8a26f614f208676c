package admin

import (
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type categoryRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=2,max=80"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	ParentID    *int    `json:"parentId"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"`
}

// ListCategories returns every category including inactive ones
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := database.DB.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, categories, "")
}

// CreateCategory adds a category with a slug derived from its name
func CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}

	category := models.Category{IsActive: true}
	copier.CopyWithOption(&category, &req, copier.Option{IgnoreEmpty: true})
	category.Name = strings.TrimSpace(req.Name)
	category.Slug = utils.Slugify(category.Name)

	if err := database.DB.Create(&category).Error; err != nil {
		respondError(c, err)
		return
	}
	services.Forget(services.CategoriesCacheKey)
	utils.CreatedResponse(c, category, "Category created successfully")
}

// UpdateCategory applies the non-empty fields of the request
func UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category payload"})
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		respondError(c, notFound("Category"))
		return
	}
	if req.ParentID != nil && *req.ParentID == category.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A category cannot be its own parent"})
		return
	}

	copier.CopyWithOption(&category, &req, copier.Option{IgnoreEmpty: true})
	if name := strings.TrimSpace(req.Name); name != "" {
		category.Name = name
		category.Slug = utils.Slugify(name)
	}

	if err := database.DB.Save(&category).Error; err != nil {
		respondError(c, err)
		return
	}
	services.Forget(services.CategoriesCacheKey)
	utils.SuccessResponse(c, category, "Category updated successfully")
}

// DeleteCategory removes a category that no product references
func DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var products int64
	database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&products)
	if products > 0 {
		respondError(c, conflict("Category still has products"))
		return
	}

	res := database.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, notFound("Category"))
		return
	}
	services.Forget(services.CategoriesCacheKey)
	utils.SuccessResponse(c, nil, "Category deleted successfully")
}
