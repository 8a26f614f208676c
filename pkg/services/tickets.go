package services

import (
	"errors"
	"fmt"
	"time"

	"petshop_backend/pkg/models"

	"gorm.io/gorm"
)

// ErrTicketClosed rejects replies to a CLOSED ticket
var ErrTicketClosed = errors.New("ticket is closed")

// TicketNumber formats TKT-YYYY-NNNN from the creation year and row id
func TicketNumber(createdAt time.Time, id int) string {
	return fmt.Sprintf("TKT-%d-%04d", createdAt.Year(), id)
}

// AddTicketMessage appends a reply and applies the status side effects:
// a customer reply reopens a RESOLVED ticket, a staff reply picks up an OPEN one.
func AddTicketMessage(tx *gorm.DB, ticket *models.Ticket, author models.User, body string) (*models.TicketMessage, error) {
	if ticket.Status == models.TicketStatusClosed {
		return nil, ErrTicketClosed
	}

	msg := models.TicketMessage{
		TicketID:   ticket.ID,
		AuthorID:   author.ID,
		AuthorRole: author.Role,
		Body:       body,
	}
	if err := tx.Create(&msg).Error; err != nil {
		return nil, err
	}

	next := ticket.Status
	switch {
	case author.Role == models.RoleCustomer && ticket.Status == models.TicketStatusResolved:
		next = models.TicketStatusOpen
	case author.Role != models.RoleCustomer && ticket.Status == models.TicketStatusOpen:
		next = models.TicketStatusInProgress
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if next != ticket.Status {
		updates["status"] = next
		if next == models.TicketStatusOpen {
			updates["resolved_at"] = nil
		}
	}
	if err := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	if next == models.TicketStatusOpen && ticket.Status != next {
		ticket.ResolvedAt = nil
	}
	ticket.Status = next
	return &msg, nil
}
