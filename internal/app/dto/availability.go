package dto

import (
	"time"

	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/listings"
)

type RentPeriod struct {
	ID       string `json:"id"`
	Month    string `json:"month"`
	StartDay int    `json:"start_day"`
	EndDay   int    `json:"end_day"`
}

// AvailabilitySnapshot mirrors the cache contents: every parsed period plus the mapped
// subset keyed by property id.
type AvailabilitySnapshot struct {
	RentPeriods      []RentPeriod                         `json:"rent_periods"`
	PropertyRentData map[listings.PropertyID][]RentPeriod `json:"property_rent_data"`
	FetchedAt        time.Time                            `json:"fetched_at"`
}

func MapSnapshot(s availability.Snapshot) AvailabilitySnapshot {
	out := AvailabilitySnapshot{
		RentPeriods:      mapPeriods(s.RentPeriods),
		PropertyRentData: make(map[listings.PropertyID][]RentPeriod, len(s.ByProperty)),
		FetchedAt:        s.FetchedAt,
	}
	for id, periods := range s.ByProperty {
		out.PropertyRentData[id] = mapPeriods(periods)
	}
	return out
}

func mapPeriods(periods []availability.RentPeriod) []RentPeriod {
	out := make([]RentPeriod, 0, len(periods))
	for _, p := range periods {
		out = append(out, RentPeriod{ID: p.ID, Month: p.Month, StartDay: p.StartDay, EndDay: p.EndDay})
	}
	return out
}

// UnavailableDates keeps "no blocked days" apart from "unknown": Dates is empty for
// loading and unavailable statuses.
type UnavailableDates struct {
	PropertyID listings.PropertyID `json:"property_id"`
	Status     string              `json:"status"`
	Dates      []string            `json:"dates"`
	Error      string              `json:"error,omitempty"`
}

func MapUnavailableDates(id listings.PropertyID, st availability.Status) UnavailableDates {
	out := UnavailableDates{
		PropertyID: id,
		Status:     string(st.Kind()),
		Dates:      FormatDates(st.Dates()),
	}
	if st.Err() != nil {
		out.Error = st.Err().Error()
	}
	return out
}
