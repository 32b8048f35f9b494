package inquiries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentdom/internal/app/dto"
	appoutbox "rentdom/internal/app/outbox"
	"rentdom/internal/app/policies"
	domaininquiry "rentdom/internal/domain/inquiry"
	domainlistings "rentdom/internal/domain/listings"
)

const SubmitKey = "inquiries.submit"

var ErrRelayFailed = errors.New("inquiries: relay failed")

// SubmitCommand carries one contact or booking form. ClientKey identifies the submitter
// for rate limiting and must already be hashed. RequestKey is the client's Idempotency-Key.
type SubmitCommand struct {
	Form       domaininquiry.Form
	ClientKey  string
	RequestKey string
}

func (SubmitCommand) Key() string { return SubmitKey }

func (c SubmitCommand) IdempotencyKey() string { return c.RequestKey }

func (SubmitCommand) ResultPrototype() any { return &dto.InquiryReceipt{} }

// FormValidator adapts the inquiry validator to the command validation middleware.
type FormValidator struct {
	Validator *domaininquiry.Validator
}

func (v FormValidator) Validate(_ context.Context, message any) error {
	cmd, ok := message.(SubmitCommand)
	if !ok {
		return nil
	}
	_, err := v.Validator.Check(cmd.Form)
	return err
}

type SubmitHandler struct {
	Validator *domaininquiry.Validator
	Limiter   policies.RateLimiter
	Catalog   domainlistings.Repository
	Relays    map[domaininquiry.Kind]policies.Relay
	Outbox    appoutbox.Outbox
	Encoder   appoutbox.EventEncoder
	Now       func() time.Time
	NewID     func() string
	Logger    *slog.Logger
	Metrics   interface{ RateLimited() }
}

func (h *SubmitHandler) Handle(ctx context.Context, cmd SubmitCommand) (*dto.InquiryReceipt, error) {
	form, err := h.Validator.Check(cmd.Form)
	if err != nil {
		return nil, err
	}
	now := h.now()

	decision, err := h.Limiter.Allow(ctx, cmd.ClientKey, now)
	if err != nil {
		return nil, fmt.Errorf("inquiries: rate limiter: %w", err)
	}
	if !decision.Allowed {
		h.logger().WarnContext(ctx, "inquiry rate limited", "client", cmd.ClientKey, "reset_at", decision.ResetAt)
		if h.Metrics != nil {
			h.Metrics.RateLimited()
		}
		return nil, domaininquiry.ErrRateLimited
	}

	var property *domainlistings.Property
	if form.PropertyID != 0 {
		p, err := h.Catalog.ByID(ctx, form.PropertyID)
		if err != nil {
			return nil, err
		}
		property = &p
	}

	inq := domaininquiry.NewInquiry(domaininquiry.InquiryID(h.newID()), form, property, now)
	relay, ok := h.Relays[inq.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no relay for %q", ErrRelayFailed, inq.Kind)
	}
	if err := relay.Send(ctx, inq); err != nil {
		h.logger().ErrorContext(ctx, "inquiry relay failed", "inquiry_id", inq.ID, "kind", inq.Kind, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}

	if err := appoutbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, inq.Drain()); err != nil {
		h.logger().WarnContext(ctx, "inquiry events not recorded", "inquiry_id", inq.ID, "error", err)
	}
	h.logger().InfoContext(ctx, "inquiry submitted", "inquiry_id", inq.ID, "kind", inq.Kind, "property_id", inq.PropertyID)

	return &dto.InquiryReceipt{
		ID:          string(inq.ID),
		Kind:        string(inq.Kind),
		Remaining:   decision.Remaining,
		SubmittedAt: inq.SubmittedAt,
	}, nil
}

func (h *SubmitHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *SubmitHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *SubmitHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
