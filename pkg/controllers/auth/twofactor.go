package auth

import (
	"net/http"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "Paws & Whiskers Admin"

type totpRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// SetupTwoFactor generates an unconfirmed TOTP secret for the admin
func SetupTwoFactor(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if user.TwoFactorEnabled {
		c.JSON(http.StatusConflict, gin.H{"message": "Two-factor authentication is already enabled"})
		return
	}

	account := user.Name
	if user.Email != nil {
		account = *user.Email
	}
	key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: account})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate secret"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("two_factor_secret", key.Secret()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":     key.Secret(),
		"otpauthUrl": key.URL(),
	})
}

// EnableTwoFactor confirms the pending secret with a first code
func EnableTwoFactor(c *gin.Context) {
	var req totpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A 6-digit code is required"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if user.TwoFactorSecret == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Run two-factor setup first"})
		return
	}
	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid code"})
		return
	}

	now := time.Now()
	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"two_factor_enabled":    true,
		"two_factor_enabled_at": now,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

// DisableTwoFactor turns 2FA off after checking a current code
func DisableTwoFactor(c *gin.Context) {
	var req totpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A 6-digit code is required"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Two-factor authentication is not enabled"})
		return
	}
	if !totp.Validate(req.Code, *user.TwoFactorSecret) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid code"})
		return
	}

	database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"two_factor_enabled":    false,
		"two_factor_secret":     nil,
		"two_factor_enabled_at": nil,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication disabled"})
}
