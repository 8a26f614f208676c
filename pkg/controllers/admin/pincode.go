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

type pincodeRequest struct {
	Code           string   `json:"code" binding:"required,pincode"`
	City           string   `json:"city" binding:"required"`
	State          string   `json:"state" binding:"required"`
	DeliveryCharge *float64 `json:"deliveryCharge" binding:"required,min=0"`
	DeliveryDays   int      `json:"deliveryDays" binding:"required,min=1,max=30"`
	IsActive       *bool    `json:"isActive"`
}

func (r pincodeRequest) apply(p *models.Pincode) {
	p.Code = r.Code
	p.City = r.City
	p.State = r.State
	p.DeliveryCharge = utils.RoundMoney(*r.DeliveryCharge)
	p.DeliveryDays = r.DeliveryDays
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// ListPincodes returns serviceable pincodes
func ListPincodes(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Pincode{})
	if q := c.Query("q"); q != "" {
		query = query.Where("code LIKE ?", q+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var pincodes []models.Pincode
	if err := query.Order("code ASC").Scopes(page.Scope).Find(&pincodes).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, pincodes, total, page)
}

// CreatePincode registers a deliverable pincode
func CreatePincode(c *gin.Context) {
	var req pincodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid 6-digit code, city, state, deliveryCharge and deliveryDays are required"})
		return
	}
	pincode := models.Pincode{IsActive: true}
	req.apply(&pincode)

	if err := database.DB.Create(&pincode).Error; err != nil {
		respondError(c, err)
		return
	}
	services.Forget(services.PincodeCachePrefix)
	utils.CreatedResponse(c, pincode, "Pincode added")
}

// UpdatePincode replaces a pincode's delivery terms
func UpdatePincode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req pincodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid 6-digit code, city, state, deliveryCharge and deliveryDays are required"})
		return
	}

	var pincode models.Pincode
	if err := database.DB.First(&pincode, id).Error; err != nil {
		respondError(c, notFound("Pincode"))
		return
	}
	req.apply(&pincode)
	if err := database.DB.Save(&pincode).Error; err != nil {
		respondError(c, err)
		return
	}
	services.Forget(services.PincodeCachePrefix)
	utils.SuccessResponse(c, pincode, "Pincode updated")
}

// DeletePincode stops delivering to a pincode
func DeletePincode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := database.DB.Delete(&models.Pincode{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, notFound("Pincode"))
		return
	}
	services.Forget(services.PincodeCachePrefix)
	utils.SuccessResponse(c, nil, "Pincode deleted")
}
