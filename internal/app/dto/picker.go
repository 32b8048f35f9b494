package dto

import (
	"fmt"
	"strings"
	"time"

	"rentdom/internal/domain/picker"
)

// PickerState is the widget state the browser keeps between events.
type PickerState struct {
	Open      bool    `json:"open"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Hover     *string `json:"hover,omitempty"`
	Month     string  `json:"month,omitempty"`
}

// PickerEvent is one user interaction. Date is required for click and hover.
type PickerEvent struct {
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
}

type PickerDay struct {
	Date        string `json:"date,omitempty"`
	Day         int    `json:"day,omitempty"`
	Blank       bool   `json:"blank,omitempty"`
	Disabled    bool   `json:"disabled"`
	Unavailable bool   `json:"unavailable"`
	Selected    bool   `json:"selected"`
	InRange     bool   `json:"in_range"`
	Today       bool   `json:"today"`
}

type PickerGrid struct {
	Title          string      `json:"title"`
	Month          string      `json:"month"`
	Weekdays       []string    `json:"weekdays"`
	Days           []PickerDay `json:"days"`
	HasUnavailable bool        `json:"has_unavailable"`
	CanClear       bool        `json:"can_clear"`
	DisplayText    string      `json:"display_text"`
}

type PickerSelection struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Nights    int     `json:"nights,omitempty"`
}

// PickerTransition is the answer to one event: the new state to keep, whether the owner's
// date range changed, and the month grid to render.
type PickerTransition struct {
	State              PickerState     `json:"state"`
	Phase              string          `json:"phase"`
	Changed            bool            `json:"changed"`
	Selection          PickerSelection `json:"selection"`
	Grid               PickerGrid      `json:"grid"`
	AvailabilityStatus string          `json:"availability_status"`
}

// ToPickerState converts the wire form. An empty month is left zero for the picker to fill.
func ToPickerState(s PickerState) (picker.State, error) {
	var out picker.State
	out.Open = s.Open

	start, err := parseDatePtr(s.StartDate)
	if err != nil {
		return out, err
	}
	end, err := parseDatePtr(s.EndDate)
	if err != nil {
		return out, err
	}
	hover, err := parseDatePtr(s.Hover)
	if err != nil {
		return out, err
	}
	out.Selection = picker.Selection{Start: start, End: end}
	out.Hover = hover

	if m := strings.TrimSpace(s.Month); m != "" {
		month, err := time.Parse(MonthLayout, m)
		if err != nil {
			if month, err = ParseDate(m); err != nil {
				return out, fmt.Errorf("dto: invalid month %q", m)
			}
		}
		out.Month = month
	}
	return out, nil
}

func MapPickerState(s picker.State) PickerState {
	out := PickerState{
		Open:      s.Open,
		StartDate: formatDatePtr(s.Selection.Start),
		EndDate:   formatDatePtr(s.Selection.End),
		Hover:     formatDatePtr(s.Hover),
	}
	if !s.Month.IsZero() {
		out.Month = s.Month.Format(MonthLayout)
	}
	return out
}

// MapPickerSelection reports nights only for a complete range.
func MapPickerSelection(sel picker.Selection) PickerSelection {
	out := PickerSelection{StartDate: formatDatePtr(sel.Start), EndDate: formatDatePtr(sel.End)}
	if r, ok := sel.Range(); ok {
		out.Nights = r.Nights()
	}
	return out
}

func MapPickerGrid(g picker.Grid) PickerGrid {
	days := make([]PickerDay, 0, len(g.Days))
	for _, d := range g.Days {
		if d.Blank {
			days = append(days, PickerDay{Blank: true})
			continue
		}
		days = append(days, PickerDay{
			Date:        FormatDate(d.Date),
			Day:         d.Date.Day(),
			Disabled:    d.Disabled,
			Unavailable: d.Unavailable,
			Selected:    d.Selected,
			InRange:     d.InRange,
			Today:       d.Today,
		})
	}
	return PickerGrid{
		Title:          g.Title,
		Month:          g.Month.Format(MonthLayout),
		Weekdays:       g.Weekdays[:],
		Days:           days,
		HasUnavailable: g.HasUnavailable,
		CanClear:       g.CanClear,
		DisplayText:    g.DisplayText,
	}
}
