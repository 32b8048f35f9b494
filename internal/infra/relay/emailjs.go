package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rentdom/internal/domain/inquiry"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJS sends contact inquiries through the EmailJS REST API.
type EmailJS struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Location   *time.Location
	Timeout    time.Duration
	HTTP       *http.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailJS) Send(ctx context.Context, inq *inquiry.Inquiry) error {
	if e.ServiceID == "" || e.TemplateID == "" || e.PublicKey == "" {
		return errors.New("relay: emailjs is not configured")
	}
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      e.ServiceID,
		TemplateID:     e.TemplateID,
		UserID:         e.PublicKey,
		TemplateParams: e.params(inq),
	})
	if err != nil {
		return fmt.Errorf("relay: encode emailjs payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, e.Timeout)
	defer cancel()
	endpoint := e.Endpoint
	if endpoint == "" {
		endpoint = DefaultEmailJSEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("relay: build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(e.HTTP, req)
}

func (e *EmailJS) params(inq *inquiry.Inquiry) map[string]string {
	start, end := ruDate(inq.CheckIn, e.Location), ruDate(inq.CheckOut, e.Location)
	if start == "" {
		start = notSpecified
	}
	if end == "" {
		end = notSpecified
	}
	params := map[string]string{
		"from_name":            inq.Name,
		"from_phone":           inq.Phone,
		"message":              inq.Message,
		"preferred_start_date": start,
		"preferred_end_date":   end,
		"timestamp":            ruTimestamp(inq.SubmittedAt, e.Location),
	}
	if inq.PropertyTitle != "" {
		params["property"] = inq.PropertyTitle
	}
	return params
}
