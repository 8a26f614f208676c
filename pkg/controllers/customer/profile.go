package customer

import (
	"errors"
	"net/http"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateProfile edits name and phone
func UpdateProfile(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"omitempty,min=1,max=100"`
		Phone string `json:"phone" binding:"omitempty,phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid name or phone"})
		return
	}

	user := currentUser(c)
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"message": "Phone number is already in use"})
			return
		}
		respondError(c, err)
		return
	}

	database.DB.First(&user, user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

type addressRequest struct {
	FullName  string `json:"fullName" binding:"required"`
	Phone     string `json:"phone" binding:"required,phone"`
	Line1     string `json:"line1" binding:"required"`
	Line2     string `json:"line2"`
	Landmark  string `json:"landmark"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Pincode   string `json:"pincode" binding:"required,pincode"`
	IsDefault bool   `json:"isDefault"`
}

func (r addressRequest) apply(a *models.Address) {
	a.FullName = r.FullName
	a.Phone = r.Phone
	a.Line1 = r.Line1
	a.Line2 = r.Line2
	a.Landmark = r.Landmark
	a.City = r.City
	a.State = r.State
	a.Pincode = r.Pincode
	a.IsDefault = r.IsDefault
}

// ListAddresses returns saved addresses, default first
func ListAddresses(c *gin.Context) {
	user := currentUser(c)
	var addresses []models.Address
	if err := database.DB.Where("user_id = ?", user.ID).Order("is_default DESC, id ASC").Find(&addresses).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// saveAddress writes the address and keeps a single default per user
func saveAddress(tx *gorm.DB, address *models.Address) error {
	var count int64
	if err := tx.Model(&models.Address{}).Where("user_id = ? AND id <> ?", address.UserID, address.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		address.IsDefault = true
	}

	if address.IsDefault {
		if err := tx.Model(&models.Address{}).
			Where("user_id = ? AND id <> ?", address.UserID, address.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
	}
	return tx.Save(address).Error
}

// CreateAddress adds an address; the first one becomes the default
func CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "fullName, phone, line1, city, state and a valid 6-digit pincode are required"})
		return
	}

	user := currentUser(c)
	address := models.Address{UserID: user.ID}
	req.apply(&address)

	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		return saveAddress(tx, &address)
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address saved", "address": address})
}

// UpdateAddress replaces an address owned by the user
func UpdateAddress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "fullName, phone, line1, city, state and a valid 6-digit pincode are required"})
		return
	}

	user := currentUser(c)
	var address models.Address
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&address).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Address not found"})
		return
	}
	wasDefault := address.IsDefault
	req.apply(&address)
	if wasDefault {
		address.IsDefault = true
	}

	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		return saveAddress(tx, &address)
	}); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": address})
}

// DeleteAddress removes an address and promotes another one to default if needed
func DeleteAddress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user := currentUser(c)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).First(&address).Error; err != nil {
			return &httpError{Status: http.StatusNotFound, Message: "Address not found"}
		}
		if err := tx.Delete(&address).Error; err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}
		var next models.Address
		if err := tx.Where("user_id = ?", user.ID).Order("id ASC").First(&next).Error; err != nil {
			return nil
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// RegisterDevice stores an FCM token for push notifications
func RegisterDevice(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Platform string `json:"platform" binding:"omitempty,oneof=android ios web"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token is required"})
		return
	}

	user := currentUser(c)
	device := models.UserDeviceToken{UserID: user.ID, Token: req.Token, Platform: req.Platform}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(&device).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}
