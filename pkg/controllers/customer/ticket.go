package customer

import (
	"errors"
	"net/http"
	"strings"

	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var errTicketNotFound = &httpError{Status: http.StatusNotFound, Message: "Ticket not found"}

func loadOwnTicket(tx *gorm.DB, userID, ticketID int) (*models.Ticket, error) {
	var ticket models.Ticket
	err := tx.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Where("id = ? AND user_id = ?", ticketID, userID).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket opens a help-desk ticket, optionally about one of the user's orders
func CreateTicket(c *gin.Context) {
	var req struct {
		Subject     string `json:"subject" binding:"required,max=200"`
		Description string `json:"description" binding:"required"`
		Priority    string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
		OrderID     *int   `json:"orderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject and description are required; priority must be LOW, MEDIUM or HIGH"})
		return
	}

	user := currentUser(c)
	if req.OrderID != nil {
		var count int64
		database.DB.Model(&models.Order{}).Where("id = ? AND user_id = ?", *req.OrderID, user.ID).Count(&count)
		if count == 0 {
			respondError(c, errOrderNotFound)
			return
		}
	}

	priority := models.Priority(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}
	ticket := models.Ticket{
		UserID:      user.ID,
		OrderID:     req.OrderID,
		Subject:     strings.TrimSpace(req.Subject),
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		Status:      models.TicketStatusOpen,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		ticket.TicketNumber = services.TicketNumber(ticket.CreatedAt, ticket.ID)
		return tx.Model(&ticket).Update("ticket_number", ticket.TicketNumber).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Str("ticket_number", ticket.TicketNumber).Int("user_id", user.ID).Msg("ticket created")
	c.JSON(http.StatusCreated, gin.H{"message": "Ticket created successfully", "ticket": ticket})
}

// ListTickets returns the user's tickets, newest first
func ListTickets(c *gin.Context) {
	query := database.DB.Where("user_id = ?", currentUser(c).ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC, id DESC").Find(&tickets).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// GetTicket returns one of the user's tickets with its conversation
func GetTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticket, err := loadOwnTicket(database.DB, currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// AddTicketMessage posts a customer reply
func AddTicketMessage(c *gin.Context) {
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

	user := currentUser(c)
	var msg *models.TicketMessage
	var ticket *models.Ticket
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ticket, err = loadOwnTicket(tx, user.ID, id)
		if err != nil {
			return err
		}
		msg, err = services.AddTicketMessage(tx, ticket, user, strings.TrimSpace(req.Body))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Reply added", "ticketStatus": ticket.Status, "ticketMessage": msg})
}

// UploadTicketImage attaches a screenshot or photo to a ticket
func UploadTicketImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ticket, err := loadOwnTicket(database.DB, currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}

	url, err := services.UploadMultipartImage(c.Request.Context(), file, "tickets")
	if err != nil {
		respondUploadError(c, err)
		return
	}

	if err := database.DB.Model(&models.Ticket{}).Where("id = ?", ticket.ID).Update("image_url", url).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "imageUrl": url})
}
