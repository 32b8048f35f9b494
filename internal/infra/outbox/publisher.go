package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "rentdom/internal/app/outbox"
)

const defaultSource = "app://rentdom"

// Producer is satisfied by the Kafka producer and its log fallback.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Publisher wraps records in a CloudEvents 1.0 JSON envelope and sends them to
// "<prefix><aggregate>.events.v1".
type Publisher struct {
	Producer    Producer
	TopicPrefix string
	Source      string
	NewID       func() string
}

func (p Publisher) Publish(ctx context.Context, rec appoutbox.EventRecord) error {
	payload, headers, err := p.envelope(rec)
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, p.topicFor(rec.Name), rec.Aggregate, payload, headers)
}

func (p Publisher) envelope(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &data); err != nil {
			return nil, nil, err
		}
	}
	id := rec.ID
	if id == "" {
		id = p.newID()
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              id,
		"type":            rec.Name + ".v1",
		"source":          p.source(),
		"time":            rec.OccurredAt.UTC().Format(time.RFC3339Nano),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"ce-type":      rec.Name + ".v1",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (p Publisher) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return p.TopicPrefix + base + ".events.v1"
}

func (p Publisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return defaultSource
}

func (p Publisher) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}
