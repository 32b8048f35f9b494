package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"rentdom/internal/app/commands"
)

// IdempotentCommand is implemented by commands that a client may safely retry.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a pointer to a fresh value of the handler's result type.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Command    string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

type IdempotencyOption func(*idempotencyConfig)

type idempotencyConfig struct {
	now func() time.Time
}

// WithIdempotencyClock stamps stored records with now instead of the wall clock.
func WithIdempotencyClock(now func() time.Time) IdempotencyOption {
	return func(c *idempotencyConfig) { c.now = now }
}

// Idempotency replays the stored result of a command already handled under the same key.
// Only successes are stored, so a submission rejected by validation or the rate limiter can
// be retried with the same key once the cause is gone. Keys are scoped by command key.
func Idempotency(store IdempotencyStore, opts ...IdempotencyOption) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	cfg := idempotencyConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return nextFn(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := json.Unmarshal(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}

			result, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			record := IdempotencyRecord{
				Key:        key,
				Command:    cmd.Key(),
				OccurredAt: cfg.now().UTC(),
			}
			if result != nil {
				payload, encErr := json.Marshal(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

// normalizePrototype hands back the same shape the handler returns: handlers in this
// module return pointers, so the decoded pointer is returned as-is.
func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
