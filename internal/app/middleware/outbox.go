package middleware

import (
	"context"

	"rentdom/internal/app/commands"
	"rentdom/internal/app/outbox"
)

// FlushFailure receives outbox publish errors for a command that already succeeded.
type FlushFailure func(ctx context.Context, cmd commands.Command, err error)

// OutboxFlush publishes the events a successful command recorded. The flush ignores
// request cancellation, and a failed publish never turns the command into a failure.
func OutboxFlush(box outbox.Outbox, onFailure FlushFailure) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if onFailure == nil {
		onFailure = func(context.Context, commands.Command, error) {}
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if flushErr := box.Flush(context.WithoutCancel(ctx)); flushErr != nil {
				onFailure(ctx, cmd, flushErr)
			}
			return res, nil
		})
	}
}
