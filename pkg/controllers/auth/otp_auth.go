package auth

import (
	"errors"
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type otpTarget struct {
	Channel     models.OTPChannel `json:"channel" binding:"required,oneof=email sms"`
	Destination string            `json:"destination" binding:"required"`
}

// normalize validates and canonicalises the destination for its channel
func (t *otpTarget) normalize() bool {
	t.Destination = strings.TrimSpace(t.Destination)
	if t.Channel == models.OTPChannelEmail {
		t.Destination = normalizeEmail(t.Destination)
		return strings.Contains(t.Destination, "@")
	}
	return utils.IsValidPhone(t.Destination)
}

func (t otpTarget) lookup() (models.User, error) {
	var user models.User
	column := "email"
	if t.Channel == models.OTPChannelSMS {
		column = "phone"
	}
	err := database.DB.Where(column+" = ?", t.Destination).First(&user).Error
	return user, err
}

// SendOTP generates and sends an OTP to the given email or phone
func SendOTP(c *gin.Context) {
	var req otpTarget
	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid channel and destination are required"})
		return
	}

	code, err := services.OTP.Issue(c.Request.Context(), req.Channel, req.Destination)
	if errors.Is(err, services.ErrOTPCooldown) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to issue otp")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate OTP"})
		return
	}

	if err := services.DeliverOTP(c.Request.Context(), req.Channel, req.Destination, code); err != nil {
		log.Error().Err(err).Str("channel", string(req.Channel)).Msg("failed to deliver otp")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to send OTP"})
		return
	}

	_, lookupErr := req.lookup()
	c.JSON(http.StatusOK, gin.H{
		"message":     "OTP sent successfully",
		"destination": req.Destination,
		"userExists":  lookupErr == nil,
	})
}

// VerifyOTPHandler validates the OTP and signs in or registers the user
func VerifyOTPHandler(c *gin.Context) {
	var req struct {
		otpTarget
		OTP      string `json:"otp" binding:"required"`
		Name     string `json:"name"`
		TOTPCode string `json:"totpCode"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || !req.normalize() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Channel, destination and OTP are required"})
		return
	}

	if err := services.OTP.Verify(c.Request.Context(), req.Channel, req.Destination, req.OTP); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := req.lookup()
	created := false
	if err != nil {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			if req.Channel == models.OTPChannelEmail {
				name = strings.Split(req.Destination, "@")[0]
			} else {
				name = "Customer"
			}
		}

		destination := req.Destination
		user = models.User{Name: name, Role: models.RoleCustomer, IsActive: true, IsVerified: true}
		if req.Channel == models.OTPChannelEmail {
			user.Email = &destination
		} else {
			user.Phone = &destination
		}

		if err := database.DB.Create(&user).Error; err != nil {
			log.Error().Err(err).Msg("failed to create otp user")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
			return
		}
		created = true
	} else {
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account is disabled."})
			return
		}
		if !secondFactorPassed(c, user, req.TOTPCode) {
			return
		}
		if !user.IsVerified {
			if err := database.DB.Model(&user).Update("is_verified", true).Error; err != nil {
				log.Warn().Err(err).Int("user_id", user.ID).Msg("failed to mark user verified")
			}
			user.IsVerified = true
		}
	}

	token, err := startSession(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSignedIn(c, status, "OTP verified successfully", user, token)
}
