package picker

import (
	"fmt"
	"time"

	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/shared/daterange"
)

const (
	DefaultPlaceholder = "Выберите даты"
	displayLayout      = "02.01.2006"
)

var WeekdayLabels = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// Day is one rendered cell. Blank cells pad the first week and carry a zero Date.
type Day struct {
	Date        time.Time
	Blank       bool
	Disabled    bool
	Unavailable bool
	Selected    bool
	InRange     bool
	Today       bool
}

// Grid is the month view of the popover, weeks starting on Monday.
type Grid struct {
	Title          string
	Month          time.Time
	Weekdays       [7]string
	Days           []Day
	HasUnavailable bool
	CanClear       bool
	DisplayText    string
}

func (p *Picker) Grid(s State) Grid {
	s = p.normalize(s)
	first := s.Month
	lead := (int(first.Weekday()) + 6) % 7
	last := first.AddDate(0, 1, -1).Day()

	days := make([]Day, 0, lead+last)
	for i := 0; i < lead; i++ {
		days = append(days, Day{Blank: true})
	}
	for n := 1; n <= last; n++ {
		d := daterange.Date(first.Year(), first.Month(), n)
		days = append(days, Day{
			Date:        d,
			Disabled:    p.IsDisabled(d),
			Unavailable: p.IsUnavailable(d),
			Selected:    isEndpoint(s.Selection, d),
			InRange:     p.InRange(s, d),
			Today:       d.Equal(p.Today),
		})
	}

	return Grid{
		Title:          fmt.Sprintf("%s %d", availability.MonthTitle(first.Month()), first.Year()),
		Month:          first,
		Weekdays:       WeekdayLabels,
		Days:           days,
		HasUnavailable: p.HasUnavailable(),
		CanClear:       s.Selection.Start != nil || s.Selection.End != nil,
		DisplayText:    DisplayText(s.Selection, DefaultPlaceholder),
	}
}

// DisplayText renders the input field caption in dd.mm.yyyy form.
func DisplayText(sel Selection, placeholder string) string {
	switch sel.Phase() {
	case RangeSelected:
		return sel.Start.Format(displayLayout) + " - " + sel.End.Format(displayLayout)
	case StartSelected:
		return sel.Start.Format(displayLayout) + " - ..."
	default:
		return placeholder
	}
}

func isEndpoint(sel Selection, d time.Time) bool {
	if sel.Start != nil && daterange.SameDay(*sel.Start, d) {
		return true
	}
	return sel.End != nil && daterange.SameDay(*sel.End, d)
}
