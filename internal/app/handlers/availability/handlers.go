package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rentdom/internal/app/dto"
	appoutbox "rentdom/internal/app/outbox"
	"rentdom/internal/app/policies"
	domainavailability "rentdom/internal/domain/availability"
	domainlistings "rentdom/internal/domain/listings"
	"rentdom/internal/domain/picker"
	"rentdom/internal/domain/shared/events"
)

const (
	GetSnapshotKey         = "availability.snapshot"
	GetUnavailableDatesKey = "availability.unavailable_dates"
	PickerTransitionKey    = "availability.picker.transition"
	RefreshKey             = "availability.refresh"
)

var ErrInvalidPickerEvent = errors.New("availability: invalid picker event")

type GetSnapshotQuery struct{}

func (GetSnapshotQuery) Key() string { return GetSnapshotKey }

type GetSnapshotHandler struct {
	Source policies.AvailabilitySource
}

func (h *GetSnapshotHandler) Handle(ctx context.Context, _ GetSnapshotQuery) (dto.AvailabilitySnapshot, error) {
	snap, err := h.Source.Get(ctx)
	if err != nil {
		return dto.AvailabilitySnapshot{}, err
	}
	return dto.MapSnapshot(snap), nil
}

type GetUnavailableDatesQuery struct {
	PropertyID domainlistings.PropertyID
}

func (GetUnavailableDatesQuery) Key() string { return GetUnavailableDatesKey }

// GetUnavailableDatesHandler never fails on availability errors: the status carries them.
type GetUnavailableDatesHandler struct {
	Catalog  domainlistings.Repository
	Resolver *StatusResolver
}

func (h *GetUnavailableDatesHandler) Handle(ctx context.Context, q GetUnavailableDatesQuery) (dto.UnavailableDates, error) {
	if _, err := h.Catalog.ByID(ctx, q.PropertyID); err != nil {
		return dto.UnavailableDates{}, err
	}
	return dto.MapUnavailableDates(q.PropertyID, h.Resolver.Status(ctx, q.PropertyID)), nil
}

// PickerTransitionQuery applies one event to a client-held picker state. It has no side
// effects, the client stores the returned state.
type PickerTransitionQuery struct {
	PropertyID domainlistings.PropertyID
	State      dto.PickerState
	Event      dto.PickerEvent
	MinDate    *time.Time
	MaxDate    *time.Time
}

func (PickerTransitionQuery) Key() string { return PickerTransitionKey }

type PickerTransitionHandler struct {
	Catalog  domainlistings.Repository
	Resolver *StatusResolver
	Logger   *slog.Logger
}

func (h *PickerTransitionHandler) Handle(ctx context.Context, q PickerTransitionQuery) (dto.PickerTransition, error) {
	if _, err := h.Catalog.ByID(ctx, q.PropertyID); err != nil {
		return dto.PickerTransition{}, err
	}
	state, err := dto.ToPickerState(q.State)
	if err != nil {
		return dto.PickerTransition{}, fmt.Errorf("%w: %v", ErrInvalidPickerEvent, err)
	}

	status := h.Resolver.Status(ctx, q.PropertyID)
	var opts []picker.Option
	if q.MinDate != nil {
		opts = append(opts, picker.WithMinDate(*q.MinDate))
	}
	if q.MaxDate != nil {
		opts = append(opts, picker.WithMaxDate(*q.MaxDate))
	}
	p := picker.FromStatus(h.Resolver.now(), status, opts...)

	next, change, err := apply(p, state, q.Event)
	if err != nil {
		return dto.PickerTransition{}, err
	}
	if h.Logger != nil && change.Emitted {
		h.Logger.DebugContext(ctx, "picker selection changed",
			"property_id", q.PropertyID,
			"phase", next.Selection.Phase().String(),
			"availability", status.Kind(),
		)
	}

	return dto.PickerTransition{
		State:              dto.MapPickerState(next),
		Phase:              next.Selection.Phase().String(),
		Changed:            change.Emitted,
		Selection:          dto.MapPickerSelection(next.Selection),
		Grid:               dto.MapPickerGrid(p.Grid(next)),
		AvailabilityStatus: string(status.Kind()),
	}, nil
}

func apply(p *picker.Picker, s picker.State, ev dto.PickerEvent) (picker.State, picker.Change, error) {
	kind := strings.ToLower(strings.TrimSpace(ev.Type))
	needsDate := kind == "click" || kind == "hover"

	var day time.Time
	if needsDate {
		d, err := dto.ParseDate(ev.Date)
		if err != nil {
			return s, picker.Change{}, fmt.Errorf("%w: %v", ErrInvalidPickerEvent, err)
		}
		day = d
	}

	unchanged := picker.Change{Selection: s.Selection}
	switch kind {
	case "", "render":
		return p.Normalize(s), unchanged, nil
	case "click":
		next, ch := p.Click(s, day)
		return next, ch, nil
	case "hover":
		return p.Hover(s, day), unchanged, nil
	case "leave":
		return p.Leave(s), unchanged, nil
	case "toggle":
		return p.Toggle(s), unchanged, nil
	case "outside_click":
		return p.OutsideClick(s), unchanged, nil
	case "clear":
		next, ch := p.Clear(s)
		return next, ch, nil
	case "prev_month":
		return p.PrevMonth(s), unchanged, nil
	case "next_month":
		return p.NextMonth(s), unchanged, nil
	default:
		return s, picker.Change{}, fmt.Errorf("%w: unknown type %q", ErrInvalidPickerEvent, ev.Type)
	}
}

type RefreshCommand struct{}

func (RefreshCommand) Key() string { return RefreshKey }

// RefreshHandler forces a refetch of the sheet and announces the new snapshot.
type RefreshHandler struct {
	Source  policies.AvailabilitySource
	Outbox  appoutbox.Outbox
	Encoder appoutbox.EventEncoder
	Now     func() time.Time
	Logger  *slog.Logger
}

func (h *RefreshHandler) Handle(ctx context.Context, _ RefreshCommand) (*dto.AvailabilitySnapshot, error) {
	snap, err := h.Source.Refetch(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	var rec events.EventRecorder
	rec.Record(domainavailability.SnapshotRefreshedEvent(snap, now().UTC()))
	if err := appoutbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, rec.Drain()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "availability refreshed", "periods", len(snap.RentPeriods), "properties", len(snap.ByProperty))
	}
	out := dto.MapSnapshot(snap)
	return &out, nil
}
