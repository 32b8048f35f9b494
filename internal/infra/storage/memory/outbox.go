package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "rentdom/internal/app/outbox"
)

// Publisher delivers one encoded event.
type Publisher interface {
	Publish(ctx context.Context, rec appoutbox.EventRecord) error
}

// Outbox buffers records and hands them to Publisher on Flush. Records that fail to
// publish are kept for the next Flush. Without a Publisher Flush discards them.
type Outbox struct {
	Publisher Publisher

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox(pub Publisher) *Outbox {
	return &Outbox{Publisher: pub}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.Publisher == nil || len(pending) == 0 {
		return nil
	}

	var (
		failed []appoutbox.EventRecord
		errs   []error
	)
	for _, rec := range pending {
		if err := o.Publisher.Publish(ctx, rec); err != nil {
			failed = append(failed, rec)
			errs = append(errs, err)
		}
	}
	if len(failed) > 0 {
		o.mu.Lock()
		o.records = append(failed, o.records...)
		o.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Pending reports how many records wait for the next Flush.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.records)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
