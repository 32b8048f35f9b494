package middleware

import (
	"context"

	"rentdom/internal/app/commands"
)

// Validator rejects a message before it reaches its handler. Validators pass messages
// they do not recognise.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

// Validation runs the validators in order on every command and returns the first rejection.
func Validation(validators ...Validator) CommandMiddleware {
	if len(validators) == 0 {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			for _, v := range validators {
				if err := v.Validate(ctx, cmd); err != nil {
					return nil, err
				}
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}
