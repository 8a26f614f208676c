package admin

import (
	"errors"
	"net/http"
	"strconv"

	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type httpError struct {
	Status  int
	Message string
}

func (e *httpError) Error() string {
	return e.Message
}

func notFound(what string) *httpError {
	return &httpError{Status: http.StatusNotFound, Message: what + " not found"}
}

func conflict(msg string) *httpError {
	return &httpError{Status: http.StatusConflict, Message: msg}
}

// respondError writes the status for known failures and a 500 otherwise
func respondError(c *gin.Context, err error) {
	var he *httpError
	var ce *services.CheckoutError
	switch {
	case errors.As(err, &he):
		c.JSON(he.Status, gin.H{"message": he.Message})
	case errors.As(err, &ce):
		c.JSON(ce.Status, gin.H{"message": ce.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"message": "A record with the same unique value already exists"})
	case errors.Is(err, services.ErrTicketClosed):
		c.JSON(http.StatusConflict, gin.H{"message": "Ticket is closed"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Image uploads are not available"})
	case errors.Is(err, services.ErrImageTooLarge), errors.Is(err, services.ErrImageType):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("admin request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func currentAdmin(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
