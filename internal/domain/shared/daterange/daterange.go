package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must not be before start")
)

// DateRange is an inclusive span of calendar days [Start, End], both truncated to UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates t to midnight UTC of its own calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar day. Out-of-range days roll over like time.Date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn is the number of days month has in year.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts nights between check-in and check-out days.
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

// Days counts calendar days in the span, endpoints included.
func (dr DateRange) Days() int {
	return dr.Nights() + 1
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.Start) && !t.After(dr.End)
}

// ContainsAny reports whether any of dates falls inside the span.
func (dr DateRange) ContainsAny(dates []time.Time) bool {
	for _, d := range dates {
		if dr.ContainsDate(d) {
			return true
		}
	}
	return false
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !other.Start.After(dr.End)
}

// Each calls fn for every day of the span in order.
func (dr DateRange) Each(fn func(day time.Time)) {
	for d := dr.Start; !d.After(dr.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
