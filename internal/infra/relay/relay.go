package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rentdom/internal/app/policies"
	"rentdom/internal/domain/inquiry"
)

var ErrRejected = errors.New("relay: rejected by transport")

const notSpecified = "Не указано"

// Recorder counts deliveries per transport. *obs.Metrics satisfies it.
type Recorder interface {
	RelaySend(transport string, err error)
}

// Observed reports every delivery of the wrapped relay to Metrics.
type Observed struct {
	Name    string
	Relay   policies.Relay
	Metrics Recorder
}

func (o Observed) Send(ctx context.Context, inq *inquiry.Inquiry) error {
	err := o.Relay.Send(ctx, inq)
	if o.Metrics != nil {
		o.Metrics.RelaySend(o.Name, err)
	}
	return err
}

func do(client *http.Client, req *http.Request) error {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("relay: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func ruDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(zone(loc)).Format("02.01.2006")
}

func ruTimestamp(t time.Time, loc *time.Location) string {
	return t.In(zone(loc)).Format("02.01.2006, 15:04:05")
}

func zone(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
