package picker

import (
	"time"

	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/shared/daterange"
)

// Phase is the selection sub-state while the popover is open.
type Phase int

const (
	NoSelection Phase = iota
	StartSelected
	RangeSelected
)

func (p Phase) String() string {
	switch p {
	case StartSelected:
		return "start_selected"
	case RangeSelected:
		return "range_selected"
	default:
		return "no_selection"
	}
}

// Selection is the owner's committed date range. End is set only together with Start.
type Selection struct {
	Start *time.Time
	End   *time.Time
}

func (s Selection) Phase() Phase {
	switch {
	case s.Start == nil:
		return NoSelection
	case s.End == nil:
		return StartSelected
	default:
		return RangeSelected
	}
}

// Range returns the committed span when both ends are set.
func (s Selection) Range() (daterange.DateRange, bool) {
	if s.Phase() != RangeSelected {
		return daterange.DateRange{}, false
	}
	dr, err := daterange.New(*s.Start, *s.End)
	if err != nil {
		return daterange.DateRange{}, false
	}
	return dr, true
}

// State is everything the widget keeps between events.
type State struct {
	Open      bool
	Selection Selection
	Hover     *time.Time
	Month     time.Time
}

// Change is returned by transitions. Emitted means the owner must store Selection.
type Change struct {
	Emitted   bool
	Selection Selection
}

// Picker holds the constraints of one widget instance. It never mutates a State in place.
type Picker struct {
	MinDate     time.Time
	MaxDate     time.Time
	Today       time.Time
	unavailable map[time.Time]struct{}
	blocked     []time.Time
}

type Option func(*Picker)

// WithMinDate overrides the default lower bound (start of today).
func WithMinDate(t time.Time) Option {
	return func(p *Picker) { p.MinDate = daterange.Day(t) }
}

// WithMaxDate sets an upper bound. The zero value means unbounded.
func WithMaxDate(t time.Time) Option {
	return func(p *Picker) { p.MaxDate = daterange.Day(t) }
}

func New(today time.Time, unavailable []time.Time, opts ...Option) *Picker {
	p := &Picker{
		Today:       daterange.Day(today),
		MinDate:     daterange.Day(today),
		unavailable: make(map[time.Time]struct{}, len(unavailable)),
	}
	for _, d := range unavailable {
		d = daterange.Day(d)
		if _, dup := p.unavailable[d]; dup {
			continue
		}
		p.unavailable[d] = struct{}{}
		p.blocked = append(p.blocked, d)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromStatus builds a picker from an availability status. Only loaded dates block days.
func FromStatus(today time.Time, status availability.Status, opts ...Option) *Picker {
	return New(today, status.Dates(), opts...)
}

func (p *Picker) HasUnavailable() bool {
	return len(p.unavailable) > 0
}

func (p *Picker) IsUnavailable(d time.Time) bool {
	_, ok := p.unavailable[daterange.Day(d)]
	return ok
}

// IsDisabled reports whether d can be picked as either endpoint. MinDate itself is allowed.
func (p *Picker) IsDisabled(d time.Time) bool {
	d = daterange.Day(d)
	if p.IsUnavailable(d) {
		return true
	}
	if !p.MinDate.IsZero() && d.Before(p.MinDate) {
		return true
	}
	if !p.MaxDate.IsZero() && d.After(p.MaxDate) {
		return true
	}
	return false
}

// SpanBlocked reports whether the inclusive span between a and b holds an unavailable day.
func (p *Picker) SpanBlocked(a, b time.Time) bool {
	a, b = daterange.Day(a), daterange.Day(b)
	if b.Before(a) {
		a, b = b, a
	}
	return daterange.DateRange{Start: a, End: b}.ContainsAny(p.blocked)
}

// Initial returns a closed widget showing the month of the committed start, or today's month.
func (p *Picker) Initial(sel Selection) State {
	month := p.Today
	if sel.Start != nil {
		month = *sel.Start
	}
	return State{Selection: sel, Month: firstOfMonth(month)}
}

// Click applies a click on a day cell. Clicks on a closed widget or on a disabled day are ignored.
func (p *Picker) Click(s State, d time.Time) (State, Change) {
	s = p.normalize(s)
	d = daterange.Day(d)
	if !s.Open || p.IsDisabled(d) {
		return s, Change{Selection: s.Selection}
	}

	switch s.Selection.Phase() {
	case StartSelected:
		start := *s.Selection.Start
		// a start that became unavailable after it was picked is dropped as well
		if d.Before(start) || p.IsDisabled(start) || p.SpanBlocked(start, d) {
			s.Selection = startAt(d)
			break
		}
		s.Selection = Selection{Start: ptr(start), End: ptr(d)}
		s.Open = false
		s.Hover = nil
	default:
		s.Selection = startAt(d)
	}
	return s, Change{Emitted: true, Selection: s.Selection}
}

// Hover records the day under the pointer for preview, disabled days included; InRange
// decides whether the preview is shown. Committed state is untouched.
func (p *Picker) Hover(s State, d time.Time) State {
	s = p.normalize(s)
	if !s.Open {
		s.Hover = nil
		return s
	}
	s.Hover = ptr(daterange.Day(d))
	return s
}

func (p *Picker) Leave(s State) State {
	s = p.normalize(s)
	s.Hover = nil
	return s
}

// InRange reports whether day is highlighted: inside the committed range, or inside the
// hover preview when that preview does not cross an unavailable day.
func (p *Picker) InRange(s State, day time.Time) bool {
	sel := s.Selection
	if sel.Start == nil {
		return false
	}
	day = daterange.Day(day)
	start := daterange.Day(*sel.Start)

	var end time.Time
	preview := false
	switch {
	case sel.End != nil:
		end = daterange.Day(*sel.End)
	case s.Hover != nil:
		end = daterange.Day(*s.Hover)
		preview = true
	default:
		return false
	}
	if end.Before(start) {
		start, end = end, start
	}
	if day.Before(start) || day.After(end) {
		return false
	}
	if preview {
		return !p.SpanBlocked(start, end)
	}
	return true
}

// PreviewRange returns the hover preview span when it is shown.
func (p *Picker) PreviewRange(s State) (daterange.DateRange, bool) {
	if s.Selection.Phase() != StartSelected || s.Hover == nil {
		return daterange.DateRange{}, false
	}
	start, end := daterange.Day(*s.Selection.Start), daterange.Day(*s.Hover)
	if end.Before(start) {
		start, end = end, start
	}
	if p.SpanBlocked(start, end) {
		return daterange.DateRange{}, false
	}
	return daterange.DateRange{Start: start, End: end}, true
}

func (p *Picker) Toggle(s State) State {
	s = p.normalize(s)
	s.Open = !s.Open
	if !s.Open {
		s.Hover = nil
	}
	return s
}

// OutsideClick closes an open widget and keeps the selection.
func (p *Picker) OutsideClick(s State) State {
	s = p.normalize(s)
	s.Open = false
	s.Hover = nil
	return s
}

// Clear drops the selection and closes the widget.
func (p *Picker) Clear(s State) (State, Change) {
	s = p.normalize(s)
	s.Selection = Selection{}
	s.Open = false
	s.Hover = nil
	return s, Change{Emitted: true}
}

func (p *Picker) PrevMonth(s State) State {
	s = p.normalize(s)
	s.Month = s.Month.AddDate(0, -1, 0)
	return s
}

func (p *Picker) NextMonth(s State) State {
	s = p.normalize(s)
	s.Month = s.Month.AddDate(0, 1, 0)
	return s
}

// Normalize truncates every date to its day, drops an end without a valid start and fills
// a missing month.
func (p *Picker) Normalize(s State) State {
	return p.normalize(s)
}

func (p *Picker) normalize(s State) State {
	if s.Month.IsZero() {
		s.Month = p.Initial(s.Selection).Month
	} else {
		s.Month = firstOfMonth(s.Month)
	}
	if s.Selection.Start == nil {
		s.Selection.End = nil
	}
	if s.Selection.Start != nil {
		s.Selection.Start = ptr(daterange.Day(*s.Selection.Start))
	}
	if s.Selection.End != nil {
		s.Selection.End = ptr(daterange.Day(*s.Selection.End))
		if s.Selection.End.Before(*s.Selection.Start) {
			s.Selection.End = nil
		}
	}
	if s.Hover != nil {
		s.Hover = ptr(daterange.Day(*s.Hover))
	}
	return s
}

func startAt(d time.Time) Selection {
	return Selection{Start: ptr(d)}
}

func firstOfMonth(t time.Time) time.Time {
	return daterange.Date(t.Year(), t.Month(), 1)
}

func ptr(t time.Time) *time.Time {
	return &t
}
