package customer

import (
	"errors"
	"net/http"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PincodeCheck is the public serviceability answer for a postal code
type PincodeCheck struct {
	Code                  string  `json:"code"`
	Serviceable           bool    `json:"serviceable"`
	City                  string  `json:"city,omitempty"`
	State                 string  `json:"state,omitempty"`
	DeliveryCharge        float64 `json:"deliveryCharge"`
	DeliveryDays          int     `json:"deliveryDays,omitempty"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
}

// CheckPincode reports whether orders can be delivered to a pincode
func CheckPincode(c *gin.Context) {
	code := c.Param("code")
	if !utils.IsValidPincode(code) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Pincode must be 6 digits"})
		return
	}

	check, err := services.Remember(services.PincodeCachePrefix+code, services.PincodeTTL, func() (PincodeCheck, error) {
		var pincode models.Pincode
		err := database.DB.Where("code = ? AND is_active = ?", code, true).First(&pincode).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PincodeCheck{Code: code}, nil
		}
		if err != nil {
			return PincodeCheck{}, err
		}
		return PincodeCheck{
			Code:           code,
			Serviceable:    true,
			City:           pincode.City,
			State:          pincode.State,
			DeliveryCharge: pincode.DeliveryCharge,
			DeliveryDays:   pincode.DeliveryDays,
		}, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	check.FreeDeliveryThreshold = config.AppConfig.FreeDeliveryThreshold
	c.JSON(http.StatusOK, check)
}
