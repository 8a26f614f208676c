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
	"gorm.io/gorm"
)

// ListTickets returns help-desk tickets filtered by status and priority
func ListTickets(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.Ticket{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", strings.ToUpper(priority))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var tickets []models.Ticket
	if err := query.Preload("User", selectUserSummary).Order("created_at DESC, id DESC").
		Scopes(page.Scope).Find(&tickets).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, tickets, total, page)
}

func loadTicket(tx *gorm.DB, id int) (*models.Ticket, error) {
	var ticket models.Ticket
	err := tx.Preload("User", selectUserSummary).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&ticket, id).Error
	if err != nil {
		return nil, notFound("Ticket")
	}
	return &ticket, nil
}

// GetTicket returns a ticket with its conversation
func GetTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticket, err := loadTicket(database.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, ticket, "")
}

// ReplyToTicket posts a staff message; an OPEN ticket moves to IN_PROGRESS
func ReplyToTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "body is required"})
		return
	}

	staff := currentAdmin(c)
	var ticket *models.Ticket
	var msg *models.TicketMessage
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if ticket, err = loadTicket(tx, id); err != nil {
			return err
		}
		msg, err = services.AddTicketMessage(tx, ticket, staff, strings.TrimSpace(req.Body))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"ticketStatus": ticket.Status, "ticketMessage": msg}, "Reply added")
}

// UpdateTicketStatus sets the status; RESOLVED and CLOSED stamp resolvedAt
func UpdateTicketStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status         string  `json:"status" binding:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
		ResolutionNote *string `json:"resolutionNote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be OPEN, IN_PROGRESS, RESOLVED or CLOSED"})
		return
	}

	var ticket models.Ticket
	if err := database.DB.First(&ticket, id).Error; err != nil {
		respondError(c, notFound("Ticket"))
		return
	}

	status := models.TicketStatus(req.Status)
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.TicketStatusResolved, models.TicketStatusClosed:
		if ticket.ResolvedAt == nil {
			updates["resolved_at"] = time.Now()
		}
	default:
		updates["resolved_at"] = nil
	}
	if req.ResolutionNote != nil {
		updates["resolution_note"] = strings.TrimSpace(*req.ResolutionNote)
	}

	if err := database.DB.Model(&ticket).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}
	database.DB.First(&ticket, id)
	utils.SuccessResponse(c, ticket, "Ticket status updated")
}
