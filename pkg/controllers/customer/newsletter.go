package customer

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscribe adds an email to the newsletter; repeating it is harmless
func Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid email is required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var sub models.NewsletterSubscriber
	err := database.DB.Where("email = ?", email).First(&sub).Error
	switch {
	case err == nil:
		if !sub.IsActive {
			if err := database.DB.Model(&sub).Updates(map[string]interface{}{
				"is_active":       true,
				"subscribed_at":   time.Now(),
				"unsubscribed_at": nil,
			}).Error; err != nil {
				respondError(c, err)
				return
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.NewsletterSubscriber{
			Email:        email,
			Token:        uuid.NewString(),
			IsActive:     true,
			SubscribedAt: time.Now(),
		}
		if err := database.DB.Create(&sub).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, err)
			return
		}
	default:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscribed to the newsletter"})
}

// Unsubscribe deactivates the subscriber owning token
func Unsubscribe(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token is required"})
		return
	}

	res := database.DB.Model(&models.NewsletterSubscriber{}).Where("token = ?", token).Updates(map[string]interface{}{
		"is_active":       false,
		"unsubscribed_at": time.Now(),
	})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
}
