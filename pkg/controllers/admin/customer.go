package admin

import (
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type customerRow struct {
	models.User
	OrderCount int64   `json:"orderCount"`
	TotalSpent float64 `json:"totalSpent"`
}

// ListCustomers returns customers with order stats, searchable by name or email
func ListCustomers(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var users []models.User
	if err := query.Order("created_at DESC, id DESC").Scopes(page.Scope).Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	ids := make([]int, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var stats []struct {
		UserID     int
		OrderCount int64
		TotalSpent float64
	}
	if len(ids) > 0 {
		if err := database.DB.Model(&models.Order{}).
			Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS total_spent").
			Where("user_id IN ? AND status <> ?", ids, models.OrderStatusCancelled).
			Group("user_id").Scan(&stats).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	byUser := make(map[int]int, len(stats))
	for i, s := range stats {
		byUser[s.UserID] = i
	}

	rows := make([]customerRow, len(users))
	for i, u := range users {
		rows[i] = customerRow{User: u}
		if j, ok := byUser[u.ID]; ok {
			rows[i].OrderCount = stats[j].OrderCount
			rows[i].TotalSpent = utils.RoundMoney(stats[j].TotalSpent)
		}
	}
	utils.ListResponse(c, rows, total, page)
}

// SetCustomerActive enables or disables a customer account
func SetCustomerActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "isActive is required"})
		return
	}

	res := database.DB.Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleCustomer).
		Update("is_active", *req.IsActive)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, notFound("Customer"))
		return
	}

	log.Info().Int("customer_id", id).Bool("is_active", *req.IsActive).Int("admin_id", currentAdmin(c).ID).Msg("customer status changed")
	utils.SuccessResponse(c, gin.H{"id": id, "isActive": *req.IsActive}, "Customer updated")
}
