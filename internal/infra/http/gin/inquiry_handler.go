package ginserver

import (
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentdom/internal/app/commands"
	"rentdom/internal/app/dto"
	"rentdom/internal/app/queries"
	inquiryapp "rentdom/internal/app/handlers/inquiries"
	"rentdom/internal/domain/inquiry"
	"rentdom/internal/domain/listings"
)

// ClientIDHeader lets the site pass a stable browser id for rate limiting.
const ClientIDHeader = "X-Client-ID"

type InquiryHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type submitInquiryRequest struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	PropertyID int    `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

func (h InquiryHandler) Submit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inquiries unavailable"})
		return
	}
	var req submitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form := inquiry.Form{
		Kind:       inquiry.Kind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Name:       req.Name,
		Phone:      req.Phone,
		Message:    req.Message,
		PropertyID: listings.PropertyID(req.PropertyID),
	}
	var err error
	if form.CheckIn, err = optionalDate(req.CheckIn); err != nil {
		writeError(c, &inquiry.ValidationError{Field: "CheckIn", Title: inquiry.TitleBadDates, Message: "Неверная дата заезда"})
		return
	}
	if form.CheckOut, err = optionalDate(req.CheckOut); err != nil {
		writeError(c, &inquiry.ValidationError{Field: "CheckOut", Title: inquiry.TitleBadDates, Message: "Неверная дата выезда"})
		return
	}

	cmd := inquiryapp.SubmitCommand{
		Form:       form,
		ClientKey:  clientKey(c),
		RequestKey: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	result, err := commands.Dispatch[inquiryapp.SubmitCommand, *dto.InquiryReceipt](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// Remaining reports the submissions left for the caller, keyed the same way Submit is.
func (h InquiryHandler) Remaining(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inquiries unavailable"})
		return
	}
	q := inquiryapp.RemainingQuery{ClientKey: clientKey(c)}
	result, err := queries.Ask[inquiryapp.RemainingQuery, dto.InquiryAllowance](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// clientKey prefers the browser id and falls back to address plus user agent. Only the
// hash leaves this function.
func clientKey(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(ClientIDHeader)); id != "" {
		return inquiry.ClientKey("client", id)
	}
	return inquiry.ClientKey("ip", c.ClientIP(), c.Request.UserAgent())
}

func optionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := dto.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

var _ InquiryHTTP = InquiryHandler{}
