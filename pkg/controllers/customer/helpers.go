package customer

import (
	"errors"
	"net/http"
	"strconv"

	"petshop_backend/pkg/middleware"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// httpError is a handler-level failure with its response status
type httpError struct {
	Status  int
	Message string
}

func (e *httpError) Error() string {
	return e.Message
}

var (
	errProductNotFound = &httpError{Status: http.StatusNotFound, Message: "Product not found"}
	errOutOfStock      = &httpError{Status: http.StatusConflict, Message: "Product is out of stock"}
)

// respondError maps known errors to their status and hides the rest behind a 500
func respondError(c *gin.Context, err error) {
	var he *httpError
	if errors.As(err, &he) {
		c.JSON(he.Status, gin.H{"message": he.Message})
		return
	}

	var ce *services.CheckoutError
	if errors.As(err, &ce) {
		body := gin.H{"message": ce.Message}
		if ce.Details != nil {
			body["details"] = ce.Details
		}
		c.JSON(ce.Status, body)
		return
	}

	if errors.Is(err, services.ErrTicketClosed) {
		c.JSON(http.StatusConflict, gin.H{"message": "Ticket is closed"})
		return
	}

	if errors.Is(err, services.ErrInvalidTransition) {
		c.JSON(http.StatusConflict, gin.H{"message": "Order can no longer be changed"})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("customer request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// respondUploadError maps image upload failures
func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Image uploads are not available"})
	case errors.Is(err, services.ErrImageTooLarge), errors.Is(err, services.ErrImageType):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		log.Error().Err(err).Msg("image upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Image upload failed"})
	}
}

func currentUser(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// paramID parses a positive integer path parameter, writing 400 when it is not one
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}
