package listings

import (
	"context"
	"log/slog"
	"time"

	"rentdom/internal/app/dto"
	handlersavailability "rentdom/internal/app/handlers/availability"
	domainlistings "rentdom/internal/domain/listings"
)

const (
	SearchKey = "listings.search"
	GetKey    = "listings.get"
)

type SearchQuery struct {
	Filter domainlistings.Filter
}

func (SearchQuery) Key() string { return SearchKey }

type SearchHandler struct {
	Catalog domainlistings.Repository
	Logger  *slog.Logger
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.PropertyCollection, error) {
	items, err := h.Catalog.Search(ctx, q.Filter)
	if err != nil {
		return dto.PropertyCollection{}, err
	}
	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "catalog searched", "filter", q.Filter.Normalized().Category, "count", len(items))
	}
	return dto.MapPropertyCollection(q.Filter, items), nil
}

type GetQuery struct {
	ID domainlistings.PropertyID
}

func (GetQuery) Key() string { return GetKey }

// GetHandler returns one property with its occupancy in the current month. When the sheet
// cannot be read the property is reported as not rented and the status says why.
type GetHandler struct {
	Catalog  domainlistings.Repository
	Resolver *handlersavailability.StatusResolver
	Now      func() time.Time
}

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (dto.PropertyDetails, error) {
	prop, err := h.Catalog.ByID(ctx, q.ID)
	if err != nil {
		return dto.PropertyDetails{}, err
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	out := dto.PropertyDetails{Property: prop, RentedDays: []int{}}
	snap, st := h.Resolver.Snapshot(ctx)
	out.AvailabilityStatus = string(st.Kind())
	if st.Known() {
		out.RentedNow = snap.RentedOn(prop.ID, now)
		out.RentedDays = snap.RentedDays(prop.ID, now.Year(), now.Month())
	}
	return out, nil
}
