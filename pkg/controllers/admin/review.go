package admin

import (
	"net/http"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListReviews returns reviews for moderation, optionally filtered by approval
func ListReviews(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Review{})
	switch c.Query("approved") {
	case "true":
		query = query.Where("is_approved = ?", true)
	case "false":
		query = query.Where("is_approved = ?", false)
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "approved must be true or false"})
		return
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var reviews []models.Review
	if err := query.Preload("User", selectUserSummary).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug") }).
		Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&reviews).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, reviews, total, page)
}

// ApproveReview publishes a review and refreshes the product rating
func ApproveReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var review models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, id).Error; err != nil {
			return notFound("Review")
		}
		if err := tx.Model(&review).Update("is_approved", true).Error; err != nil {
			return err
		}
		return services.RecomputeProductRating(tx, review.ProductID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	review.IsApproved = true
	utils.SuccessResponse(c, review, "Review approved")
}

// DeleteReview removes a review and refreshes the product rating
func DeleteReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, id).Error; err != nil {
			return notFound("Review")
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
	utils.SuccessResponse(c, nil, "Review deleted")
}
