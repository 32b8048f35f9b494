package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentdom/internal/app/commands"
	"rentdom/internal/app/outbox"
)

type noteCommand struct {
	Text string
	Req  string
}

func (noteCommand) Key() string { return "notes.add" }

func (c noteCommand) IdempotencyKey() string { return c.Req }

func (noteCommand) ResultPrototype() any { return &noteReceipt{} }

type noteReceipt struct {
	N  int       `json:"n"`
	At time.Time `json:"at"`
}

type noteHandler struct {
	calls int
	err   error
}

func (h *noteHandler) Handle(_ context.Context, cmd noteCommand) (*noteReceipt, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &noteReceipt{N: h.calls}, nil
}

type validatorOf func(message any) error

func (f validatorOf) Validate(_ context.Context, message any) error { return f(message) }

type flushRecorder struct {
	err      error
	flushes  int
	canceled bool
}

func (o *flushRecorder) Add(context.Context, outbox.EventRecord) error { return nil }

func (o *flushRecorder) Flush(ctx context.Context) error {
	o.flushes++
	o.canceled = ctx.Err() != nil
	return o.err
}

type memoryIDs struct {
	items map[string]IdempotencyRecord
}

func (m *memoryIDs) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := m.items[key]
	return rec, ok, nil
}

func (m *memoryIDs) Save(_ context.Context, rec IdempotencyRecord) error {
	m.items[rec.Key] = rec
	return nil
}

func newNoteBus(h *noteHandler) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[noteCommand, *noteReceipt](bus, "notes.add", h)
	return bus
}

func TestValidationStopsAtFirstRejection(t *testing.T) {
	h := &noteHandler{}
	tooShort := errors.New("too short")
	var seen []string
	first := validatorOf(func(message any) error {
		seen = append(seen, "first")
		if cmd, ok := message.(noteCommand); ok && len(cmd.Text) < 3 {
			return tooShort
		}
		return nil
	})
	second := validatorOf(func(any) error {
		seen = append(seen, "second")
		return nil
	})
	bus := ChainCommands(newNoteBus(h), Validation(first, second))

	_, err := commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, noteCommand{Text: "hi"})
	require.ErrorIs(t, err, tooShort)
	require.Equal(t, []string{"first"}, seen)
	require.Zero(t, h.calls)

	got, err := commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, noteCommand{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, 1, got.N)
	require.Equal(t, []string{"first", "first", "second"}, seen)

	require.Panics(t, func() { Validation() })
}

func TestOutboxFlushKeepsResultWhenPublishFails(t *testing.T) {
	h := &noteHandler{}
	box := &flushRecorder{err: errors.New("broker down")}
	var reported []string
	bus := ChainCommands(newNoteBus(h), OutboxFlush(box, func(_ context.Context, cmd commands.Command, err error) {
		reported = append(reported, cmd.Key()+": "+err.Error())
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := commands.Dispatch[noteCommand, *noteReceipt](ctx, bus, noteCommand{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, 1, got.N)
	require.Equal(t, 1, box.flushes)
	require.False(t, box.canceled, "flush runs on a context without the request cancel")
	require.Equal(t, []string{"notes.add: broker down"}, reported)
}

func TestOutboxFlushSkippedOnCommandError(t *testing.T) {
	boom := errors.New("boom")
	box := &flushRecorder{}
	bus := ChainCommands(newNoteBus(&noteHandler{err: boom}), OutboxFlush(box, nil))

	_, err := commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, noteCommand{Text: "hello"})
	require.ErrorIs(t, err, boom)
	require.Zero(t, box.flushes)
}

func TestIdempotencyReplaysWithInjectedClock(t *testing.T) {
	h := &noteHandler{}
	ids := &memoryIDs{items: map[string]IdempotencyRecord{}}
	at := time.Date(2025, time.July, 12, 9, 0, 0, 0, time.UTC)
	bus := ChainCommands(newNoteBus(h), Idempotency(ids, WithIdempotencyClock(func() time.Time { return at })))

	cmd := noteCommand{Text: "hello", Req: "r-1"}
	first, err := commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, cmd)
	require.NoError(t, err)

	require.Equal(t, 1, h.calls)
	require.Equal(t, first.N, second.N)
	rec := ids.items["notes.add:r-1"]
	require.Equal(t, at, rec.OccurredAt)
	require.Equal(t, "notes.add", rec.Command)

	_, err = commands.Dispatch[noteCommand, *noteReceipt](context.Background(), bus, noteCommand{Text: "hello"})
	require.NoError(t, err)
	require.Equal(t, 2, h.calls, "commands without a key are never replayed")
}

func TestDispatchNamesResultMismatch(t *testing.T) {
	bus := newNoteBus(&noteHandler{})
	_, err := commands.Dispatch[noteCommand, string](context.Background(), bus, noteCommand{Text: "hello"})
	require.ErrorIs(t, err, commands.ErrResultType)
	require.Contains(t, err.Error(), "notes.add")

	_, err = commands.Dispatch[noteCommand, string](context.Background(), nil, noteCommand{})
	require.ErrorIs(t, err, commands.ErrNilBus)
}
