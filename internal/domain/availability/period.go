package availability

import (
	"sort"
	"time"

	"rentdom/internal/domain/listings"
	"rentdom/internal/domain/shared/daterange"
)

// RentPeriod is one contiguous block of occupied days for one sheet label in one month.
// The year is never stored; callers anchor it (see Dates).
type RentPeriod struct {
	ID       string `json:"id"`
	Month    string `json:"month"`
	StartDay int    `json:"start_day"`
	EndDay   int    `json:"end_day"`
}

// MonthNumber resolves the period's month token.
func (p RentPeriod) MonthNumber() (time.Month, bool) {
	return ResolveMonth(p.Month)
}

func (p RentPeriod) Covers(day int) bool {
	return day >= p.StartDay && day <= p.EndDay
}

// Span clips the period to the days its month really has in year. ok is false when
// the month is unknown or no day survives the clip.
func (p RentPeriod) Span(year int) (daterange.DateRange, bool) {
	month, ok := p.MonthNumber()
	if !ok {
		return daterange.DateRange{}, false
	}
	first := max(p.StartDay, 1)
	last := min(p.EndDay, daterange.DaysIn(year, month))
	if first > last {
		return daterange.DateRange{}, false
	}
	return daterange.DateRange{
		Start: daterange.Date(year, month, first),
		End:   daterange.Date(year, month, last),
	}, true
}

// Clipped reports whether the row names days its month does not have in year.
func (p RentPeriod) Clipped(year int) bool {
	month, ok := p.MonthNumber()
	if !ok {
		return false
	}
	return p.StartDay < 1 || p.EndDay > daterange.DaysIn(year, month)
}

// Dates expands the period into calendar days of the given year, never leaving its month.
func (p RentPeriod) Dates(year int) []time.Time {
	span, ok := p.Span(year)
	if !ok {
		return nil
	}
	out := make([]time.Time, 0, span.Days())
	span.Each(func(day time.Time) {
		out = append(out, day)
	})
	return out
}

// Snapshot is the parsed sheet: all periods in source order plus the mapped subset
// grouped by property.
type Snapshot struct {
	RentPeriods []RentPeriod
	ByProperty  map[listings.PropertyID][]RentPeriod
	FetchedAt   time.Time
}

// NewSnapshot groups periods by property. Unmapped labels stay only in RentPeriods.
func NewSnapshot(periods []RentPeriod, mapper PropertyMapper, fetchedAt time.Time) Snapshot {
	grouped := make(map[listings.PropertyID][]RentPeriod)
	for _, p := range periods {
		id, ok := mapper.Lookup(p.ID)
		if !ok {
			continue
		}
		grouped[id] = append(grouped[id], p)
	}
	return Snapshot{
		RentPeriods: append([]RentPeriod(nil), periods...),
		ByProperty:  grouped,
		FetchedAt:   fetchedAt,
	}
}

// Clone returns a deep copy so callers cannot mutate the cached snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		RentPeriods: append([]RentPeriod(nil), s.RentPeriods...),
		ByProperty:  make(map[listings.PropertyID][]RentPeriod, len(s.ByProperty)),
		FetchedAt:   s.FetchedAt,
	}
	for id, periods := range s.ByProperty {
		out.ByProperty[id] = append([]RentPeriod(nil), periods...)
	}
	return out
}

func (s Snapshot) Periods(id listings.PropertyID) []RentPeriod {
	return append([]RentPeriod(nil), s.ByProperty[id]...)
}

// PeriodsInMonth keeps the property's periods whose month resolves to month.
func (s Snapshot) PeriodsInMonth(id listings.PropertyID, month time.Month) []RentPeriod {
	var out []RentPeriod
	for _, p := range s.ByProperty[id] {
		if m, ok := p.MonthNumber(); ok && m == month {
			out = append(out, p)
		}
	}
	return out
}

// UnavailableDates expands every period of the property into sorted, distinct days of year.
func (s Snapshot) UnavailableDates(id listings.PropertyID, year int) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, p := range s.ByProperty[id] {
		for _, d := range p.Dates(year) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// RentedDays lists occupied day numbers of the property in month of year, ascending.
func (s Snapshot) RentedDays(id listings.PropertyID, year int, month time.Month) []int {
	seen := make(map[int]struct{})
	out := []int{}
	for _, p := range s.PeriodsInMonth(id, month) {
		for _, d := range p.Dates(year) {
			day := d.Day()
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			out = append(out, day)
		}
	}
	sort.Ints(out)
	return out
}

// RentedOn reports whether the property is occupied on the calendar day of at.
func (s Snapshot) RentedOn(id listings.PropertyID, at time.Time) bool {
	for _, p := range s.PeriodsInMonth(id, at.Month()) {
		if p.Covers(at.Day()) {
			return true
		}
	}
	return false
}
