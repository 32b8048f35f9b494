package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var ErrUnexpectedStatus = errors.New("sheets: unexpected status")

// Client downloads the published availability spreadsheet as CSV text.
type Client struct {
	URL     string
	Charset string
	// Timeout bounds one download. Zero means no limit.
	Timeout time.Duration
	HTTP    *http.Client
}

func (c *Client) Fetch(ctx context.Context) (string, error) {
	if c == nil || strings.TrimSpace(c.URL) == "" {
		return "", errors.New("sheets: url not configured")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("sheets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(c.decode(resp.Body))
	if err != nil {
		return "", fmt.Errorf("sheets: read body: %w", err)
	}
	return string(body), nil
}

func (c *Client) decode(r io.Reader) io.Reader {
	switch strings.ToLower(c.Charset) {
	case "windows-1251", "cp1251":
		return transform.NewReader(r, charmap.Windows1251.NewDecoder())
	default:
		return r
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
