package customer

import (
	"net/http"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
)

// GetPaymentConfig exposes the public gateway key for the checkout widget
func GetPaymentConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keyId":          config.AppConfig.RazorpayKeyID,
		"onlineEnabled":  services.Payments != nil,
		"currency":       "INR",
		"freeDeliveryAt": config.AppConfig.FreeDeliveryThreshold,
	})
}
