package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a state-changing request routed by its Key.
type Command interface {
	Key() string
}

// Handler serves one command type and returns a typed result.
type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Bus is implemented by InMemoryBus and by every middleware wrapper.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

// Dispatch sends cmd through bus and narrows the untyped result to R.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	if bus == nil {
		var zero R
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil {
		var zero R
		return zero, err
	}
	return narrow[R](cmd.Key(), res)
}

// narrow maps a nil result to the zero R. Any other value must already be an R.
func narrow[R any](key string, res any) (R, error) {
	var zero R
	if res == nil {
		return zero, nil
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s produced %T", ErrResultType, key, res)
	}
	return value, nil
}
