package admin

import (
	"net/http"
	"strings"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "phone", "role")
}

// ListOrders returns orders filtered by status and creation date
func ListOrders(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Order{})

	if status := strings.ToUpper(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "from must be YYYY-MM-DD"})
			return
		}
		query = query.Where("created_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "to must be YYYY-MM-DD"})
			return
		}
		query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var orders []models.Order
	if err := query.Preload("User", selectUserSummary).Order("created_at DESC, id DESC").
		Scopes(page.Scope).Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, orders, total, page)
}

// GetOrder returns an order with items and customer
func GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.Order
	if err := database.DB.Preload("Items").Preload("User", selectUserSummary).First(&order, id).Error; err != nil {
		respondError(c, notFound("Order"))
		return
	}
	utils.SuccessResponse(c, order, "")
}

// UpdateOrderStatus moves an order along its lifecycle
func UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,oneof=CONFIRMED SHIPPED DELIVERED CANCELLED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be CONFIRMED, SHIPPED, DELIVERED or CANCELLED"})
		return
	}

	var order models.Order
	if err := database.DB.First(&order, id).Error; err != nil {
		respondError(c, notFound("Order"))
		return
	}

	previous := order.Status
	if err := services.UpdateOrderStatus(c.Request.Context(), database.DB, &order, models.OrderStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	log.Info().Int("order_id", order.ID).Str("from", string(previous)).Str("to", string(order.Status)).
		Int("admin_id", currentAdmin(c).ID).Msg("order status changed")
	services.NotifyOrderStatusAsync(database.DB, order)
	utils.SuccessResponse(c, order, "Order status updated")
}
