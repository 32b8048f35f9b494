package policies

import (
	"context"

	"rentdom/internal/domain/inquiry"
)

// Relay forwards a validated inquiry to an external e-mail service.
type Relay interface {
	Send(ctx context.Context, inq *inquiry.Inquiry) error
}
