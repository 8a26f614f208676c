package auth

import (
	"net/http"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GoogleSignIn verifies a Google ID token and links it to an account by Google id or email
func GoogleSignIn(c *gin.Context) {
	var req struct {
		IDToken  string `json:"idToken" binding:"required"`
		TOTPCode string `json:"totpCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "idToken is required"})
		return
	}

	if config.AppConfig.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Google sign-in is not configured"})
		return
	}

	identity, err := services.VerifyGoogleIDToken(c.Request.Context(), req.IDToken, config.AppConfig.GoogleClientID)
	if err != nil {
		log.Debug().Err(err).Msg("google id token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
		return
	}
	if identity.Email == "" || !identity.EmailVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google account email is not verified"})
		return
	}

	email := normalizeEmail(identity.Email)
	status := http.StatusOK

	var user models.User
	if err := database.DB.Where("google_id = ?", identity.Subject).First(&user).Error; err != nil {
		if err := database.DB.Where("email = ?", email).First(&user).Error; err == nil {
			if !secondFactorPassed(c, user, req.TOTPCode) {
				return
			}
			// link existing account
			updates := map[string]interface{}{"google_id": identity.Subject, "is_verified": true}
			if user.AvatarURL == nil && identity.Picture != "" {
				updates["avatar_url"] = identity.Picture
			}
			if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
		} else {
			name := identity.Name
			if name == "" {
				name = email
			}
			subject := identity.Subject
			user = models.User{
				Name:       name,
				Email:      &email,
				GoogleID:   &subject,
				Role:       models.RoleCustomer,
				IsVerified: true,
				IsActive:   true,
			}
			if identity.Picture != "" {
				picture := identity.Picture
				user.AvatarURL = &picture
			}
			if err := database.DB.Create(&user).Error; err != nil {
				log.Error().Err(err).Msg("failed to create google user")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			status = http.StatusCreated
		}
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Account is disabled."})
		return
	}
	if !secondFactorPassed(c, user, req.TOTPCode) {
		return
	}

	token, err := startSession(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	respondSignedIn(c, status, "Signed in with Google", user, token)
}
