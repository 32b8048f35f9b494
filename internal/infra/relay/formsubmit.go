package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rentdom/internal/domain/inquiry"
)

const DefaultFormSubmitBase = "https://formsubmit.co"

// FormSubmit posts booking inquiries as a multipart form to formsubmit.co/<email>.
type FormSubmit struct {
	BaseURL  string
	Email    string
	Location *time.Location
	Timeout  time.Duration
	HTTP     *http.Client
}

func (f *FormSubmit) Send(ctx context.Context, inq *inquiry.Inquiry) error {
	if strings.TrimSpace(f.Email) == "" {
		return errors.New("relay: formsubmit email is not configured")
	}
	body, contentType, err := f.encode(inq)
	if err != nil {
		return fmt.Errorf("relay: encode formsubmit payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, f.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(), body)
	if err != nil {
		return fmt.Errorf("relay: build formsubmit request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return do(f.HTTP, req)
}

func (f *FormSubmit) encode(inq *inquiry.Inquiry) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fields := [][2]string{
		{"type", "Заявка на бронирование"},
		{"propertyId", strconv.Itoa(int(inq.PropertyID))},
		{"property", inq.Address},
		{"name", inq.Name},
		{"phone", inq.Phone},
		{"message", inq.Message},
	}
	if in := ruDate(inq.CheckIn, f.Location); in != "" {
		fields = append(fields, [2]string{"checkIn", in})
	}
	if out := ruDate(inq.CheckOut, f.Location); out != "" {
		fields = append(fields, [2]string{"checkOut", out})
	}
	fields = append(fields,
		[2]string{"timestamp", ruTimestamp(inq.SubmittedAt, f.Location)},
		[2]string{"_subject", inq.Subject()},
		[2]string{"_template", "table"},
	)
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (f *FormSubmit) endpoint() string {
	base := strings.TrimRight(f.BaseURL, "/")
	if base == "" {
		base = DefaultFormSubmitBase
	}
	return base + "/" + url.PathEscape(strings.TrimSpace(f.Email))
}
