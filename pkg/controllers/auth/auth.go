package auth

import (
	"errors"
	"net/http"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Signup handles customer registration
func Signup(c *gin.Context) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required"`
		RetypePassword string `json:"retypePassword" binding:"required"`
		Phone          string `json:"phone" binding:"omitempty,phone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email, password, and retype password are required"})
		return
	}

	if req.Password != req.RetypePassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match"})
		return
	}
	if err := utils.CheckPasswordStrength(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	email := normalizeEmail(req.Email)

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    &email,
		Password: &hashedPassword,
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
			return
		}
		log.Error().Err(err).Msg("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	token, err := startSession(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	respondSignedIn(c, http.StatusCreated, "Account created successfully", user, token)
}

// SignIn handles password login for every role. Admins with 2FA must send totpCode.
func SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		TOTPCode string `json:"totpCode"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	if !user.HasPassword() || utils.ComparePassword(*user.Password, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
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

	respondSignedIn(c, http.StatusOK, "Signed in successfully", user, token)
}

// SignOut clears the session and token cookie
func SignOut(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	session.Save()

	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// Me returns the authenticated user with saved addresses
func Me(c *gin.Context) {
	current, _ := middleware.CurrentUser(c)

	var user models.User
	if err := database.DB.Preload("Addresses").First(&user, current.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	response := userResponse(user)
	response["addresses"] = user.Addresses
	c.JSON(http.StatusOK, gin.H{"user": response})
}

// ChangePassword updates the password after checking the current one
func ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Current password, new password and confirmation are required"})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match"})
		return
	}
	if err := utils.CheckPasswordStrength(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	if !user.HasPassword() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "This account signs in with OTP or Google and has no password"})
		return
	}
	if utils.ComparePassword(*user.Password, req.CurrentPassword) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect"})
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"password": hashed, "updated_at": time.Now()}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
