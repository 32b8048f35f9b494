package ginserver

import (
	"errors"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	handlersavailability "rentdom/internal/app/handlers/availability"
	handlersinquiries "rentdom/internal/app/handlers/inquiries"
	"rentdom/internal/domain/inquiry"
	"rentdom/internal/domain/listings"
)

// writeError maps application errors to a status and a body the site can show as is.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *inquiry.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "title": verr.Title, "field": verr.Field})
	case errors.Is(err, inquiry.ErrValidation), errors.Is(err, handlersavailability.ErrInvalidPickerEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, listings.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
	case errors.Is(err, inquiry.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, genericFailure())
	case errors.Is(err, handlersinquiries.ErrRelayFailed):
		c.JSON(http.StatusBadGateway, genericFailure())
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func genericFailure() gin.H {
	return gin.H{"title": inquiry.TitleGenericFail, "error": inquiry.MsgTryLater}
}

func propertyID(c *gin.Context) (listings.PropertyID, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property id must be a positive integer"})
		return 0, false
	}
	return listings.PropertyID(id), true
}
