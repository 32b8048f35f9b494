package inquiries

import (
	"context"
	"fmt"
	"time"

	"rentdom/internal/app/dto"
	"rentdom/internal/app/policies"
)

const RemainingKey = "inquiries.remaining"

// RemainingQuery asks how many submissions ClientKey has left in the current window.
type RemainingQuery struct {
	ClientKey string
}

func (RemainingQuery) Key() string { return RemainingKey }

type RemainingHandler struct {
	Limiter policies.RateLimiter
	Now     func() time.Time
}

func (h *RemainingHandler) Handle(ctx context.Context, q RemainingQuery) (dto.InquiryAllowance, error) {
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now()
	}
	n, err := h.Limiter.Remaining(ctx, q.ClientKey, now)
	if err != nil {
		return dto.InquiryAllowance{}, fmt.Errorf("inquiries: rate limiter: %w", err)
	}
	return dto.InquiryAllowance{Remaining: n}, nil
}
