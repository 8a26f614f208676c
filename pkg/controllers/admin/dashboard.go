package admin

import (
	"net/http"
	"strconv"
	"time"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const maxStatsDays = 365

// GetLayout returns the admin's saved widgets or the default layout
func GetLayout(c *gin.Context) {
	widgets, err := services.Widgets.Load(c.Request.Context(), currentAdmin(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	isDefault := len(widgets) == 0
	if isDefault {
		widgets = services.DefaultLayout()
	}
	utils.SuccessResponse(c, gin.H{"widgets": widgets, "isDefault": isDefault, "columns": services.GridColumns}, "")
}

// SaveLayout replaces the admin's widgets after validating the grid
func SaveLayout(c *gin.Context) {
	var req struct {
		Widgets []models.DashboardWidget `json:"widgets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "widgets is required"})
		return
	}
	if err := services.ValidateLayout(req.Widgets); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	admin := currentAdmin(c)
	if err := services.Widgets.Replace(c.Request.Context(), admin.ID, req.Widgets); err != nil {
		respondError(c, err)
		return
	}
	widgets, err := services.Widgets.Load(c.Request.Context(), admin.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"widgets": widgets, "isDefault": false, "columns": services.GridColumns}, "Layout saved")
}

// DailyRevenue is one point of the revenue series
type DailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// DashboardStats feeds the dashboard widgets
type DashboardStats struct {
	Days              int                          `json:"days"`
	Revenue           float64                      `json:"revenue"`
	OrdersByStatus    map[models.OrderStatus]int64 `json:"ordersByStatus"`
	LowStock          []models.Product             `json:"lowStock"`
	OpenTickets       int64                        `json:"openTickets"`
	PendingReviews    int64                        `json:"pendingReviews"`
	ActiveSubscribers int64                        `json:"activeSubscribers"`
	DailyRevenue      []DailyRevenue               `json:"dailyRevenue"`
}

// GetStats runs the dashboard queries concurrently over the last ?days
func GetStats(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > maxStatsDays {
		c.JSON(http.StatusBadRequest, gin.H{"message": "days must be between 1 and 365"})
		return
	}

	now := time.Now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	stats := DashboardStats{Days: days, OrdersByStatus: map[models.OrderStatus]int64{}}

	g, ctx := errgroup.WithContext(c.Request.Context())
	db := database.DB.WithContext(ctx)

	var orders []struct {
		Total     float64
		CreatedAt time.Time
	}
	g.Go(func() error {
		return db.Model(&models.Order{}).Select("total", "created_at").
			Where("created_at >= ? AND status <> ?", since, models.OrderStatusCancelled).
			Find(&orders).Error
	})

	var byStatus []struct {
		Status models.OrderStatus
		Count  int64
	}
	g.Go(func() error {
		return db.Model(&models.Order{}).Select("status, COUNT(*) AS count").
			Where("created_at >= ?", since).Group("status").Scan(&byStatus).Error
	})
	g.Go(func() error {
		return db.Where("is_active = ? AND inventory <= low_stock_threshold", true).
			Order("inventory ASC, id ASC").Limit(20).Find(&stats.LowStock).Error
	})
	g.Go(func() error {
		return db.Model(&models.Ticket{}).
			Where("status IN ?", []models.TicketStatus{models.TicketStatusOpen, models.TicketStatusInProgress}).
			Count(&stats.OpenTickets).Error
	})
	g.Go(func() error {
		return db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&stats.PendingReviews).Error
	})
	g.Go(func() error {
		return db.Model(&models.NewsletterSubscriber{}).Where("is_active = ?", true).Count(&stats.ActiveSubscribers).Error
	})

	if err := g.Wait(); err != nil {
		respondError(c, err)
		return
	}

	for _, s := range byStatus {
		stats.OrdersByStatus[s.Status] = s.Count
	}

	series := make([]DailyRevenue, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format(dateLayout)
		series[i] = DailyRevenue{Date: date}
		index[date] = i
	}
	for _, o := range orders {
		if i, ok := index[o.CreatedAt.In(now.Location()).Format(dateLayout)]; ok {
			series[i].Revenue += o.Total
			series[i].Orders++
		}
		stats.Revenue += o.Total
	}
	for i := range series {
		series[i].Revenue = utils.RoundMoney(series[i].Revenue)
	}
	stats.Revenue = utils.RoundMoney(stats.Revenue)
	stats.DailyRevenue = series
	if stats.LowStock == nil {
		stats.LowStock = []models.Product{}
	}

	utils.SuccessResponse(c, stats, "")
}
